package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// MaxDelay is the longest delay SQS accepts on a single message.
const MaxDelay = 15 * time.Minute

const closeOrderType = "order.close"

// CloseOrderMessage asks the worker to close an order once CloseAt has passed.
type CloseOrderMessage struct {
	OrderID int64     `json:"order_id"`
	CloseAt time.Time `json:"close_at"`
}

// Due reports whether the close time has been reached.
func (m CloseOrderMessage) Due(now time.Time) bool {
	return !now.Before(m.CloseAt)
}

// CloseScheduler queues delayed close-order messages. Delays longer than
// MaxDelay are covered by the worker sending the message again.
type CloseScheduler struct {
	SQS      SQSAPI
	QueueURL string
	nowFunc  func() time.Time
}

// NewCloseScheduler returns a CloseScheduler bound to a queue URL.
func NewCloseScheduler(sqsClient SQSAPI, queueURL string) *CloseScheduler {
	return &CloseScheduler{
		SQS:      sqsClient,
		QueueURL: queueURL,
		nowFunc:  time.Now,
	}
}

// ScheduleClose queues a close of orderID ttl from now.
func (s *CloseScheduler) ScheduleClose(ctx context.Context, orderID int64, ttl time.Duration) error {
	return s.Send(ctx, CloseOrderMessage{OrderID: orderID, CloseAt: s.nowFunc().Add(ttl).UTC()})
}

// Send queues msg with the remaining delay, capped at MaxDelay.
func (s *CloseScheduler) Send(ctx context.Context, msg CloseOrderMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal close message: %w", err)
	}

	_, err = s.SQS.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     sdkaws.String(s.QueueURL),
		MessageBody:  sdkaws.String(string(body)),
		DelaySeconds: delaySeconds(msg.CloseAt.Sub(s.nowFunc())),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"type": {DataType: sdkaws.String("String"), StringValue: sdkaws.String(closeOrderType)},
		},
	})
	if err != nil {
		return fmt.Errorf("send close message for order %d: %w", msg.OrderID, err)
	}
	return nil
}

func delaySeconds(d time.Duration) int32 {
	if d <= 0 {
		return 0
	}
	if d > MaxDelay {
		d = MaxDelay
	}
	return int32(math.Ceil(d.Seconds()))
}
