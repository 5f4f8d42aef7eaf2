package payment

import (
	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/pkg/money"
)

// RefundPolicy decides how much of the paid amount is returned when a
// booking is cancelled. Injected so venues can move from full refunds to
// a cancellation fee without touching the cancellation flow.
type RefundPolicy interface {
	RefundAmount(b *booking.Booking) money.Amount
}

// FullRefund returns everything the customer has paid.
type FullRefund struct{}

func (FullRefund) RefundAmount(b *booking.Booking) money.Amount {
	return b.PaidAmount
}

// PercentageRefund returns a fixed share of the paid amount, rounded
// half-up. Percent outside [0, 100] is clamped.
type PercentageRefund struct {
	Percent int
}

func (p PercentageRefund) RefundAmount(b *booking.Booking) money.Amount {
	pct := p.Percent
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return money.Amount((int64(b.PaidAmount)*int64(pct) + 50) / 100)
}
