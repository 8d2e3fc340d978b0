// model/booking.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingTaken     BookingStatus = "TAKEN"
	BookingReturned  BookingStatus = "RETURNED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// IsValid reports whether s is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingTaken, BookingReturned, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether a booking in this status still ties up the book.
// books.is_available is the materialized negation of "an active booking exists".
func (s BookingStatus) Active() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingTaken:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves this status.
func (s BookingStatus) Terminal() bool {
	return s == BookingReturned || s == BookingCancelled
}

type Booking struct {
	ID                uuid.UUID     `json:"id"`
	BookID            uuid.UUID     `json:"book_id"`
	BorrowerID        uuid.UUID     `json:"borrower_id"`
	BookingPointID    uuid.UUID     `json:"booking_point_id"`
	Status            BookingStatus `json:"status"`
	PlannedPickupDate time.Time     `json:"planned_pickup_date"`
	ActualPickupDate  *time.Time    `json:"actual_pickup_date,omitempty"`
	PlannedReturnDate time.Time     `json:"planned_return_date"`
	ActualReturnDate  *time.Time    `json:"actual_return_date,omitempty"`
	Notes             *string       `json:"notes,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
