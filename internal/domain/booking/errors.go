package booking

import "errors"

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrVenueNotFound    = errors.New("venue not found")
	ErrVenueInactive    = errors.New("venue is not open for booking")
	ErrDateInPast       = errors.New("booking date is in the past")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrDurationTooShort = errors.New("booking is shorter than the venue minimum")
	ErrSlotConflict     = errors.New("slot is already booked")
	ErrConflict         = errors.New("slot is being booked by another request, retry")
	ErrInvalidState     = errors.New("booking state does not allow this operation")
	ErrUnauthorized     = errors.New("not allowed to access this booking")
	ErrEmptyReason      = errors.New("cancellation reason is required")
)
