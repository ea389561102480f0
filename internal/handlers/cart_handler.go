package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-storefront/internal/validation"
)

// RegisterCartRoutes registers the caller's cart endpoints.
func RegisterCartRoutes(r gin.IRouter, cfg HandlerConfig) {
	v := validation.New()

	r.GET("/cart", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		items, err := cfg.Cart.List(c.Request.Context(), uid)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	})

	r.POST("/cart/items", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req validation.AddCartItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		item, err := cfg.Cart.Add(c.Request.Context(), uid, req.SkuID, req.Amount)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	r.DELETE("/cart/items/:sku_id", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		skuID, err := strconv.ParseInt(c.Param("sku_id"), 10, 64)
		if err != nil || skuID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_sku_id"})
			return
		}
		if _, err := cfg.Cart.Remove(c.Request.Context(), uid, skuID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
