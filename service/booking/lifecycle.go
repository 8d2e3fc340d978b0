package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/n1x9s/library/model"
)

// Role is the actor's relationship to a booking.
type Role int

const (
	RoleNone Role = iota // neither owner nor borrower
	RoleOwner
	RoleBorrower
)

func roleOf(b *model.Booking, book *model.Book, actorID uuid.UUID) Role {
	switch actorID {
	case book.OwnerID:
		return RoleOwner
	case b.BorrowerID:
		return RoleBorrower
	}
	return RoleNone
}

// rule is one allowed edge of the lifecycle state machine. freesBook marks
// edges that leave the active set {PENDING, CONFIRMED, TAKEN}: those must
// flip books.is_available back to true in the same transaction.
type rule struct {
	role      Role
	from, to  model.BookingStatus
	freesBook bool
}

// transitions is the single authoritative table. Every entry point
// (UpdateStatus, ConfirmPickup, ConfirmReturn, Cancel) routes through it.
// RETURNED and CANCELLED have no outgoing edges.
var transitions = []rule{
	{role: RoleOwner, from: model.BookingPending, to: model.BookingConfirmed},
	{role: RoleOwner, from: model.BookingPending, to: model.BookingCancelled, freesBook: true},
	{role: RoleOwner, from: model.BookingConfirmed, to: model.BookingCancelled, freesBook: true},
	{role: RoleBorrower, from: model.BookingPending, to: model.BookingCancelled, freesBook: true},
	{role: RoleBorrower, from: model.BookingConfirmed, to: model.BookingTaken},
	{role: RoleBorrower, from: model.BookingTaken, to: model.BookingReturned, freesBook: true},
}

func ruleFor(role Role, from, to model.BookingStatus) (rule, bool) {
	for _, tr := range transitions {
		if tr.role == role && tr.from == from && tr.to == to {
			return tr, true
		}
	}
	return rule{}, false
}

// effects is the outcome of a legal transition: the booking is mutated in
// place; the availability flip and notification intents are returned for the
// caller to persist and dispatch.
type effects struct {
	setAvailable *bool
	intents      []model.NotificationIntent
}

// apply validates a transition request against the table and mutates b.
// Authorization (third party) is rejected before the table is consulted.
func apply(b *model.Booking, book *model.Book, actorID uuid.UUID, target model.BookingStatus, now time.Time) (*effects, error) {
	role := roleOf(b, book, actorID)
	if role == RoleNone {
		return nil, makeErr(ErrForbidden)
	}

	tr, ok := ruleFor(role, b.Status, target)
	if !ok {
		return nil, makeErr(ErrInvalidTransition)
	}

	b.Status = target
	eff := &effects{}

	switch target {
	case model.BookingTaken:
		t := now
		b.ActualPickupDate = &t
	case model.BookingReturned:
		t := now
		b.ActualReturnDate = &t
		eff.intents = append(eff.intents, bookAvailableIntent(b, book))
	case model.BookingCancelled:
		eff.intents = append(eff.intents, cancelledIntent(b, book, role))
	}

	if tr.freesBook {
		v := true
		eff.setAvailable = &v
	}
	return eff, nil
}

// intent builders

func createdIntent(b *model.Booking, book *model.Book) model.NotificationIntent {
	id := b.ID
	return model.NotificationIntent{
		UserID:    book.OwnerID,
		BookingID: &id,
		Type:      model.NotifyBookingCreated,
		Title:     "New booking",
		Message:   fmt.Sprintf("Your book '%s' has been booked", book.Title),
	}
}

// cancelledIntent notifies the counterparty of whoever cancelled.
func cancelledIntent(b *model.Booking, book *model.Book, actorRole Role) model.NotificationIntent {
	to := book.OwnerID
	if actorRole == RoleOwner {
		to = b.BorrowerID
	}
	id := b.ID
	return model.NotificationIntent{
		UserID:    to,
		BookingID: &id,
		Type:      model.NotifyBookingCancelled,
		Title:     "Booking cancelled",
		Message:   fmt.Sprintf("The booking for '%s' was cancelled", book.Title),
	}
}

func bookAvailableIntent(b *model.Booking, book *model.Book) model.NotificationIntent {
	id := b.ID
	return model.NotificationIntent{
		UserID:    book.OwnerID,
		BookingID: &id,
		Type:      model.NotifyBookAvailable,
		Title:     "Book available",
		Message:   fmt.Sprintf("'%s' is available for booking again", book.Title),
	}
}

func reminderIntent(b *model.Booking, title string) model.NotificationIntent {
	id := b.ID
	return model.NotificationIntent{
		UserID:    b.BorrowerID,
		BookingID: &id,
		Type:      model.NotifyReturnReminder,
		Title:     "Return reminder",
		Message:   fmt.Sprintf("Don't forget to return '%s' by %s", title, b.PlannedReturnDate.Format("2006-01-02")),
	}
}
