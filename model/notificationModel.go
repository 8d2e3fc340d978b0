package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyBookingCreated   NotificationType = "BOOKING_CREATED"
	NotifyBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotifyReturnReminder   NotificationType = "RETURN_REMINDER"
	NotifyBookAvailable    NotificationType = "BOOK_AVAILABLE"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	BookingID *uuid.UUID       `json:"booking_id,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationIntent describes an event to notify a user about, independent
// of delivery. Transitions return intents; delivery happens after commit.
type NotificationIntent struct {
	UserID    uuid.UUID
	BookingID *uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
}
