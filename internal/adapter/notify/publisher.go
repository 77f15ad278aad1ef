package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const defaultRetryAfter = 5 * time.Second

// RetryAfterError signals that the receiver asked to slow down.
type RetryAfterError struct {
	After time.Duration
}

func (e RetryAfterError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.After)
}

// RetryAfter reports how long callers should pause before the next attempt.
func (e RetryAfterError) RetryAfter() time.Duration {
	return e.After
}

type eventPayload struct {
	EventID    string                 `json:"event_id"`
	Kind       model.NotificationKind `json:"kind"`
	OccurredAt time.Time              `json:"occurred_at"`
	Order      orderPayload           `json:"order"`
}

type orderPayload struct {
	ID              int64               `json:"id"`
	Code            string              `json:"code"`
	CustomerID      int64               `json:"customer_id"`
	Status          model.OrderStatus   `json:"status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	VoucherID       *int64              `json:"voucher_id,omitempty"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	OrderedAt       time.Time           `json:"ordered_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Lines           []linePayload       `json:"lines"`
}

type linePayload struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func encodeEvent(event model.OrderEvent) ([]byte, error) {
	order := event.Order
	lines := make([]linePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, linePayload{VariantID: line.VariantID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
	}
	return json.Marshal(eventPayload{
		EventID:    event.EventID,
		Kind:       event.Kind,
		OccurredAt: event.OccurredAt.UTC(),
		Order: orderPayload{
			ID:              order.ID,
			Code:            order.Code,
			CustomerID:      order.CustomerID,
			Status:          order.Status,
			Subtotal:        order.Subtotal,
			DiscountAmount:  order.DiscountAmount,
			TotalAmount:     order.TotalAmount,
			VoucherID:       order.VoucherID,
			ShippingAddress: order.ShippingAddress,
			PaymentMethod:   order.PaymentMethod,
			OrderedAt:       order.OrderedAt.UTC(),
			UpdatedAt:       order.UpdatedAt.UTC(),
			Lines:           lines,
		},
	})
}

func parseRetryAfter(header string, now time.Time) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return defaultRetryAfter
}
