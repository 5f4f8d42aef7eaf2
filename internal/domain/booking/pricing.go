package booking

import (
	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/timeslot"
)

// PriceSlot is a time-slot price override active on the booking date.
type PriceSlot struct {
	Start        timeslot.TimeOfDay
	End          timeslot.TimeOfDay
	PricePerHour money.Amount
}

// ComputeTotal prices a booking interval. Minutes covered by a price slot
// are charged at the slot rate, the rest at the venue base rate. Each
// segment rounds half-up to the minor unit independently, so the result
// is deterministic regardless of slot order.
func ComputeTotal(basePricePerHour money.Amount, start, end timeslot.TimeOfDay, slots []PriceSlot) money.Amount {
	totalMinutes := timeslot.DurationMinutes(start, end)
	if totalMinutes <= 0 {
		return 0
	}

	var total money.Amount
	coveredMinutes := 0
	for _, slot := range slots {
		overlapStart := maxTime(start, slot.Start)
		overlapEnd := minTime(end, slot.End)
		if overlapEnd <= overlapStart {
			continue
		}
		minutes := timeslot.DurationMinutes(overlapStart, overlapEnd)
		total += money.Total(slot.PricePerHour, minutes)
		coveredMinutes += minutes
	}

	if remaining := totalMinutes - coveredMinutes; remaining > 0 {
		total += money.Total(basePricePerHour, remaining)
	}
	return total
}

func maxTime(a, b timeslot.TimeOfDay) timeslot.TimeOfDay {
	if a > b {
		return a
	}
	return b
}

func minTime(a, b timeslot.TimeOfDay) timeslot.TimeOfDay {
	if a < b {
		return a
	}
	return b
}
