package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-storefront/internal/search"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// RegisterProductsRoutes registers the product listing and product pages.
func RegisterProductsRoutes(r gin.IRouter, cfg HandlerConfig) {
	v := validation.New()

	r.GET("/products", func(c *gin.Context) {
		var req validation.SearchRequest
		if err := validation.BindQueryAndValidate(c, &req, v); err != nil {
			return
		}

		page, err := cfg.Search.Search(c.Request.Context(), search.Params{
			Page:       req.Page,
			PerPage:    req.PerPage,
			Order:      req.Order,
			CategoryID: req.CategoryID,
			Search:     req.Search,
			Filters:    req.Filters,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	})

	r.GET("/products/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		detail, err := cfg.Products.Show(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	})
}
