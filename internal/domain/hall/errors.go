package hall

import "errors"

var (
	ErrHallNotFound      = errors.New("hall not found")
	ErrNotHallOwner      = errors.New("only the hall owner may do this")
	ErrNotHallStaff      = errors.New("not a member of hall staff")
	ErrInvalidTransition = errors.New("invalid hall status transition")
	ErrRejectionReason   = errors.New("rejection reason is required")
	ErrInvalidStaffRole  = errors.New("staff role must be manager or assistant")
	ErrStaffExists       = errors.New("user is already hall staff")
	ErrStaffNotFound     = errors.New("staff member not found")
	ErrDocumentNotFound  = errors.New("document not found")
)
