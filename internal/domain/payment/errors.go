package payment

import "errors"

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidState       = errors.New("booking state does not allow this payment")
	ErrInvalidPaymentType = errors.New("payment type does not match the booking payment mode")
	ErrAmountMismatch     = errors.New("amount does not match the expected payment step")
	ErrRefundExceedsPaid  = errors.New("refund amount exceeds the paid amount")
	ErrNothingToRefund    = errors.New("booking has no settled payments to refund")
	ErrUnauthorized       = errors.New("not allowed to access payments for this booking")
)
