package models

import "time"

// OrderStatus is the server-driven state of a submitted order
type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPending OrderStatus = "pending"
	OrderDone    OrderStatus = "done"
)

// Next returns the status that follows s in the kitchen flow.
// The second value is false when s is terminal or unknown.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderCreated:
		return OrderPending, true
	case OrderPending:
		return OrderDone, true
	default:
		return s, false
	}
}

// CanTransition reports whether an order may move from s to next
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	n, ok := s.Next()
	return ok && n == next
}

// Order is a submitted burger. Ingredients hold catalog ids in submission
// order with the bun id at both ends.
type Order struct {
	ID          string      `json:"_id" gorm:"primaryKey"`
	Number      int         `json:"number" gorm:"uniqueIndex;not null"`
	Name        string      `json:"name"`
	Status      OrderStatus `json:"status" gorm:"index;not null"`
	Ingredients []string    `json:"ingredients" gorm:"serializer:json"`
	Owner       string      `json:"-" gorm:"index"`
	CreatedAt   time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// FeedSnapshot is a full server push of a live order feed.
// Total and TotalToday are informational and may exceed len(Orders).
type FeedSnapshot struct {
	Orders     []Order   `json:"orders"`
	Total      int       `json:"total"`
	TotalToday int       `json:"totalToday"`
	Sequence   uint64    `json:"sequence"`
	ReceivedAt time.Time `json:"receivedAt"`
}
