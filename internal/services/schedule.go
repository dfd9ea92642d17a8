package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
)

// ScheduleEntry is one projected installment in a schedule preview.
type ScheduleEntry struct {
	Sequence int             `json:"sequence"`
	DueDate  time.Time       `json:"dueDate"`
	Amount   decimal.Decimal `json:"amount"`
}

// DefaultRecurrence is the monthly cadence used when a financing plan does
// not carry its own RRULE.
const DefaultRecurrence = "FREQ=MONTHLY"

var ErrInvalidSchedule = errors.New("schedule preview needs a positive installment count and total")

// PreviewSchedule projects the expected due dates and per-installment
// amounts for a financing plan. Advisory UI data only; the core API owns
// the authoritative schedule. The total is split evenly at two decimals
// with the rounding remainder folded into the last installment.
func PreviewSchedule(start time.Time, installments int, recurrence string, total decimal.Decimal) ([]ScheduleEntry, error) {
	if installments <= 0 || total.Sign() <= 0 {
		return nil, ErrInvalidSchedule
	}
	if recurrence == "" {
		recurrence = DefaultRecurrence
	}

	rule, err := rrule.StrToRRule(recurrence)
	if err != nil {
		return nil, err
	}
	rule.DTStart(start)

	each := total.DivRound(decimal.NewFromInt(int64(installments)), 2)

	entries := make([]ScheduleEntry, 0, installments)
	next := start
	for i := 0; i < installments; i++ {
		if i > 0 {
			next = rule.After(next, false)
			if next.IsZero() {
				return nil, errors.New("recurrence rule produced fewer occurrences than installments")
			}
		}
		entries = append(entries, ScheduleEntry{
			Sequence: i + 1,
			DueDate:  next,
			Amount:   each,
		})
	}

	// Fold the rounding remainder into the final installment so the
	// preview sums exactly to the total.
	sumOfOthers := each.Mul(decimal.NewFromInt(int64(installments - 1)))
	entries[installments-1].Amount = total.Sub(sumOfOthers)

	return entries, nil
}
