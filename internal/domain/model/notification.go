package model

import "time"

// NotificationKind describes which order event is announced.
type NotificationKind string

const (
	NotificationOrderPlaced        NotificationKind = "order_placed"
	NotificationOrderStatusChanged NotificationKind = "order_status_changed"
)

// NotificationStatus tracks outbox delivery.
type NotificationStatus string

const (
	NotificationPending    NotificationStatus = "pending"
	NotificationProcessing NotificationStatus = "processing"
	NotificationSent       NotificationStatus = "sent"
	NotificationFailed     NotificationStatus = "failed"
)

// Notification is an outbox row written in the same transaction as the order change.
type Notification struct {
	ID        int64
	EventID   string
	OrderID   int64
	Kind      NotificationKind
	Status    NotificationStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderEvent is what publishers deliver to the outside world.
type OrderEvent struct {
	EventID    string
	Kind       NotificationKind
	OccurredAt time.Time
	Order      Order
}
