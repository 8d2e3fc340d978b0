package booking

import "errors"

// errors used by controllers

type ErrCode string

const (
	// not found
	ErrNotFound      ErrCode = "BOOKING_NOT_FOUND"
	ErrBookNotFound  ErrCode = "BOOK_NOT_FOUND"
	ErrPointNotFound ErrCode = "POINT_NOT_FOUND"
	ErrUserNotFound  ErrCode = "USER_NOT_FOUND"

	// authorization
	ErrForbidden ErrCode = "FORBIDDEN"

	// illegal transition from the current status
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"

	// conflicts
	ErrAlreadyBooked   ErrCode = "ALREADY_BOOKED"
	ErrSelfBooking     ErrCode = "SELF_BOOKING"
	ErrBookUnavailable ErrCode = "BOOK_UNAVAILABLE"

	// input validation
	ErrPickupInPast       ErrCode = "PICKUP_IN_PAST"
	ErrReturnBeforePickup ErrCode = "RETURN_BEFORE_PICKUP"
	ErrBadStatus          ErrCode = "BAD_STATUS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for uncoded (storage) errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
