package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RoutingKeyCompleted 结算完成事件的路由键
const RoutingKeyCompleted = "checkout.completed"

// EventPublisher 事件发布接口,由pkg/mq.Publisher实现
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// CompletedEvent 结算完成事件
type CompletedEvent struct {
	GroupID    string          `json:"group_id"`
	UserID     uint            `json:"user_id"`
	Discount   int             `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Items      []EventItem     `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EventItem 事件中的一行
type EventItem struct {
	BookID     uint            `json:"book_id"`
	Quantity   int             `json:"quantity"`
	PriceTotal decimal.Decimal `json:"price_total"`
}

func newCompletedEvent(result *Result, userID uint) CompletedEvent {
	items := make([]EventItem, len(result.Transactions))
	for i, tx := range result.Transactions {
		items[i] = EventItem{
			BookID:     tx.BookID,
			Quantity:   tx.Quantity,
			PriceTotal: tx.PriceTotal,
		}
	}
	return CompletedEvent{
		GroupID:    result.GroupID,
		UserID:     userID,
		Discount:   result.Discount,
		Total:      result.DiscountedTotal,
		Items:      items,
		OccurredAt: time.Now(),
	}
}
