package venue

import "errors"

var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrVenueInactive    = errors.New("venue is not active")
	ErrInvalidSlotRange = errors.New("slot end must be after slot start")
	ErrOverlappingSlots = errors.New("pricing slots overlap")
	ErrInvalidPhoto     = errors.New("file is not a valid image")
)
