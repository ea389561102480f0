package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/events"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
	"github.com/imrishuroy/go-storefront/internal/metrics"
	"github.com/imrishuroy/go-storefront/internal/models"
	"github.com/imrishuroy/go-storefront/internal/orders"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// RegisterOrdersRoutes registers routes for order API.
func RegisterOrdersRoutes(r gin.IRouter, cfg HandlerConfig) {
	v := validation.New()

	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		uid, ok := userID(c)
		if !ok {
			return
		}

		// keep the raw body: it is both bound and fingerprinted
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		var req validation.PlaceOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote the response
			return
		}

		// Claim the idempotency key, or answer from the earlier attempt
		var claimed string
		if key := c.GetHeader("Idempotency-Key"); key != "" && cfg.Idempotency != nil {
			scoped := idempotency.ScopedKey(uid, key)
			rec, err := cfg.Idempotency.Begin(ctx, scoped, idempotency.HashRequest(raw))
			switch {
			case errors.Is(err, idempotency.ErrKeyReused):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency_key_reused"})
				return
			case err != nil:
				log.Printf("[api] idempotency check user=%d: %v", uid, err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "idempotency_check_failed"})
				return
			case rec != nil:
				replay(c, rec)
				return
			}
			claimed = scoped
		}

		order, err := place(c, cfg, uid, req)
		if err != nil {
			countOrder(cfg.Metrics, err)
			if claimed != "" {
				if relErr := cfg.Idempotency.Release(ctx, claimed); relErr != nil {
					log.Printf("[api] release idempotency key %s: %v", claimed, relErr)
				}
			}
			writeError(c, err)
			return
		}
		countOrder(cfg.Metrics, nil)

		body, err := json.Marshal(order)
		if err != nil {
			writeError(c, fmt.Errorf("encode order %d: %w", order.ID, err))
			return
		}

		if claimed != "" {
			if err := cfg.Idempotency.MarkDone(ctx, claimed, order.ID, string(body), http.StatusCreated); err != nil {
				log.Printf("[api] mark idempotency key %s done: %v", claimed, err)
			}
		}

		if cfg.Events != nil {
			evt := events.New(events.TypeOrderPlaced, order.ID, uid, map[string]any{
				"no":           order.No,
				"type":         order.Type,
				"total_amount": order.TotalAmount.String(),
			})
			if err := cfg.Events.Publish(ctx, evt); err != nil {
				log.Printf("[api] publish %s order=%d: %v", evt.Type, order.ID, err)
			}
		}

		c.Header("Location", fmt.Sprintf("/orders/%d", order.ID))
		c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
	})

	r.GET("/orders", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req validation.ListOrdersRequest
		if err := validation.BindQueryAndValidate(c, &req, v); err != nil {
			return
		}
		page, err := cfg.Orders.List(c.Request.Context(), uid, req.Page, req.PerPage)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		order, err := cfg.Orders.Get(c.Request.Context(), uid, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})
}

func place(c *gin.Context, cfg HandlerConfig, uid int64, req validation.PlaceOrderRequest) (*models.Order, error) {
	ctx := c.Request.Context()
	address, err := cfg.Addresses.GetAddress(ctx, uid, req.AddressID)
	if err != nil {
		return nil, err
	}
	items := make([]orders.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.LineItem{SkuID: it.SkuID, Amount: it.Amount})
	}
	return cfg.Placer.Place(ctx, uid, *address, req.Remark, items)
}

// replay answers a duplicate request from its idempotency record.
func replay(c *gin.Context, rec *idempotency.Record) {
	switch rec.Status {
	case idempotency.StatusDone:
		c.Header("Idempotent-Replayed", "true")
		if rec.ResponseBody == "" {
			c.JSON(rec.ResponseStatus, gin.H{"id": rec.OrderID})
			return
		}
		c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	default:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress"})
	}
}

func countOrder(m *metrics.ServerMetrics, err error) {
	if m == nil {
		return
	}
	result := metrics.ResultPlaced
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrInsufficientStock):
		result = metrics.ResultInsufficientStock
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalidArgument):
		result = metrics.ResultRejected
	default:
		result = metrics.ResultError
	}
	m.OrdersPlaced.WithLabelValues(result).Inc()
}
