package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/events"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
	"github.com/imrishuroy/go-storefront/internal/metrics"
	"github.com/imrishuroy/go-storefront/internal/models"
	"github.com/imrishuroy/go-storefront/internal/orders"
	"github.com/imrishuroy/go-storefront/internal/search"
)

// UserIDHeader carries the caller identity set by the upstream gateway.
const UserIDHeader = "X-User-Id"

type AddressReader interface {
	GetAddress(ctx context.Context, userID, addressID int64) (*models.UserAddress, error)
}

type OrderPlacer interface {
	Place(ctx context.Context, userID int64, address models.UserAddress, remark string, items []orders.LineItem) (*models.Order, error)
}

type OrderReader interface {
	List(ctx context.Context, userID int64, page, perPage int) (*orders.OrderPage, error)
	Get(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

type ProductShower interface {
	Show(ctx context.Context, id int64) (*catalog.Detail, error)
}

type IdempotencyStore interface {
	Begin(ctx context.Context, key, requestHash string) (*idempotency.Record, error)
	MarkDone(ctx context.Context, key string, orderID int64, responseBody string, responseStatus int) error
	Release(ctx context.Context, key string) error
}

type ProductSearcher interface {
	Search(ctx context.Context, p search.Params) (*search.Page, error)
}

type CartService interface {
	Add(ctx context.Context, userID, skuID int64, amount int) (*models.CartItem, error)
	Remove(ctx context.Context, userID int64, skuIDs ...int64) (int64, error)
	List(ctx context.Context, userID int64) ([]models.CartItem, error)
}

// HandlerConfig groups dependencies for the route handlers.
type HandlerConfig struct {
	Addresses   AddressReader
	Placer      OrderPlacer
	Orders      OrderReader
	Idempotency IdempotencyStore // nil ignores Idempotency-Key headers
	Events      events.Publisher // nil drops events
	Metrics     *metrics.ServerMetrics
	Search      ProductSearcher
	Products    ProductShower
	Cart        CartService
}

// userID reads the caller from UserIDHeader, answering 401 when absent or malformed.
func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader(UserIDHeader), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_user"})
		return 0, false
	}
	return id, true
}

// pathID parses the positive id in path parameter name, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_" + name})
		return 0, false
	}
	return id, true
}

// writeError maps err onto the shared taxonomy. Unclassified errors are
// logged and reported without detail.
func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": apperr.Code(err)})
		return
	}
	c.JSON(status, gin.H{"error": apperr.Code(err), "msg": err.Error()})
}
