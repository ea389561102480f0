package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/events"
)

const metricOrdersClosed = "OrdersClosed"

type orderCloser interface {
	Close(ctx context.Context, orderID int64) (bool, error)
}

type closeSender interface {
	Send(ctx context.Context, msg aws.CloseOrderMessage) error
}

type counter interface {
	Count(ctx context.Context, name string, n float64) error
}

// Processor handles close-order messages from SQS.
type Processor struct {
	closer  orderCloser
	resend  closeSender
	metrics counter
	events  events.Publisher
	nowFunc func() time.Time
}

// NewProcessor wires a Processor. metrics and publisher may be nil.
func NewProcessor(closer orderCloser, resend closeSender, metrics counter, publisher events.Publisher) *Processor {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Processor{
		closer:  closer,
		resend:  resend,
		metrics: metrics,
		events:  publisher,
		nowFunc: time.Now,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. Closing is idempotent so
			// messages already handled in this batch are safe to see again.
			log.Printf("[worker] message=%s: %v", rec.MessageId, err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var msg aws.CloseOrderMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.OrderID <= 0 {
		return fmt.Errorf("invalid order id %d: %w", msg.OrderID, apperr.ErrInvalidArgument)
	}

	// SQS caps the delay, so long TTLs arrive early and go back on the queue
	if !msg.Due(p.nowFunc()) {
		log.Printf("[worker] order=%d not due until %s, requeueing", msg.OrderID, msg.CloseAt.Format(time.RFC3339))
		return p.resend.Send(ctx, msg)
	}

	closed, err := p.closer.Close(ctx, msg.OrderID)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Printf("[worker] order=%d no longer exists", msg.OrderID)
		return nil
	}
	if err != nil {
		return err
	}
	if !closed {
		log.Printf("[worker] order=%d already paid or closed", msg.OrderID)
		return nil
	}

	log.Printf("[worker] closed order=%d", msg.OrderID)
	if p.metrics != nil {
		if err := p.metrics.Count(ctx, metricOrdersClosed, 1); err != nil {
			log.Printf("[worker] put metric %s: %v", metricOrdersClosed, err)
		}
	}
	if err := p.events.Publish(ctx, events.New(events.TypeOrderClosed, msg.OrderID, 0, nil)); err != nil {
		log.Printf("[worker] publish %s order=%d: %v", events.TypeOrderClosed, msg.OrderID, err)
	}
	return nil
}
