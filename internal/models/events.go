package models

import "time"

// Event types
const (
	EventTypeOrderCreated   = "order.created"
	EventTypeUserRegistered = "user.registered"
)

// BaseEvent contains fields common to all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent is published when the confirmation path materializes an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64  `json:"order_id"`
	TutorID       int64  `json:"tutor_id"`
	TransactionID string `json:"transaction_id"`
	StudentEmail  string `json:"student_email"`
	Amount        int64  `json:"amount"`
}

// UserRegisteredEvent is published when a new user account is created
type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}
