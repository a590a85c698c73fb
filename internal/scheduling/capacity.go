package scheduling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// CapacityCalculator derives remaining capacity for a (doctor, date) pair from
// the availability record and the ledger. Every call re-reads the ledger so a
// snapshot always reflects the latest commits.
type CapacityCalculator struct {
	avail  AvailabilityStore
	ledger AppointmentLedger
}

func NewCapacityCalculator(avail AvailabilityStore, ledger AppointmentLedger) *CapacityCalculator {
	return &CapacityCalculator{
		avail:  avail,
		ledger: ledger,
	}
}

// Remaining computes the capacity snapshot for a doctor-day. Missing or closed
// days fail closed: remaining is 0 and the reason says why. An error is only
// returned for infrastructure failures, never for a non-offerable day.
func (c *CapacityCalculator) Remaining(ctx context.Context, doctorID string, date time.Time) (CapacitySnapshot, error) {
	date = Day(date)

	snap := CapacitySnapshot{
		DoctorID: doctorID,
		Date:     date,
	}

	rec, err := c.avail.Lookup(ctx, doctorID, date)
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			snap.Reason = ReasonNoData
			return snap, nil
		}
		return CapacitySnapshot{}, fmt.Errorf("lookup availability: %w", err)
	}

	snap.DailyCapacityUnits = rec.DailyCapacityUnits
	snap.Notes = rec.Notes

	if !rec.IsAvailable {
		snap.Reason = ReasonClosedDay
		return snap, nil
	}

	consumed, err := c.ledger.BookedUnitsFor(ctx, doctorID, date)
	if err != nil {
		return CapacitySnapshot{}, fmt.Errorf("sum booked units: %w", err)
	}

	snap.ConsumedUnits = round2(consumed)
	snap.RemainingUnits = math.Max(0, round2(rec.DailyCapacityUnits-consumed))

	if snap.RemainingUnits > 0 {
		snap.Reason = ReasonOpen
	} else {
		snap.Reason = ReasonFullyBooked
	}

	return snap, nil
}

// OfferableDates returns one snapshot per day in [from, to] inclusive, in
// order. This is what a calendar renders; offerability is not a commit
// guarantee, the engine re-validates at booking time.
func (c *CapacityCalculator) OfferableDates(ctx context.Context, doctorID string, from, to time.Time) ([]CapacitySnapshot, error) {
	from = Day(from)
	to = Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s is before %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	var snaps []CapacitySnapshot
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		snap, err := c.Remaining(ctx, doctorID, day)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	return snaps, nil
}

// round2 keeps unit math at two decimals so float accumulation noise never
// flips an offerability decision.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
