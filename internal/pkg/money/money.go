package money

import "fmt"

// Amount is a monetary value in the currency's minor unit (cents).
// Stored as int64 end to end so arithmetic stays exact.
type Amount int64

// Total computes pricePerHour × (minutes / 60) rounded half-up
// to the minor unit. Fractional hours are allowed (e.g. 150 minutes = 2.5h).
func Total(pricePerHour Amount, minutes int) Amount {
	if minutes <= 0 || pricePerHour <= 0 {
		return 0
	}
	n := int64(pricePerHour) * int64(minutes)
	q := n / 60
	r := n % 60
	// round half-up on the remaining sixtieths
	if r*2 >= 60 {
		q++
	}
	return Amount(q)
}

// CeilHalf returns half of total rounded UP to the minor unit.
// Used for the first installment so the platform never under-collects.
func CeilHalf(total Amount) Amount {
	if total <= 0 {
		return 0
	}
	return Amount((int64(total) + 1) / 2)
}

// SplitInstallments splits total into the upfront and remaining installment.
// The first installment absorbs the odd cent.
func SplitInstallments(total Amount) (first, second Amount) {
	first = CeilHalf(total)
	second = total - first
	return
}

// String renders the amount in major units, e.g. 37500 -> "375.00".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
