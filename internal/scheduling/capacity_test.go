package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingFailsClosedOnMissingRecord(t *testing.T) {
	store := NewMemoryStore()
	calc := NewCapacityCalculator(store, store)

	snap, err := calc.Remaining(context.Background(), "D404", testDay)
	require.NoError(t, err)
	assert.Equal(t, ReasonNoData, snap.Reason)
	assert.Equal(t, 0.0, snap.RemainingUnits)
	assert.False(t, snap.Offerable())
}

func TestRemainingFailsClosedOnClosedDay(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID:           "D001",
		Date:               testDay,
		IsAvailable:        false,
		DailyCapacityUnits: 8,
		Notes:              "Conference",
	}))
	calc := NewCapacityCalculator(store, store)

	snap, err := calc.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	assert.Equal(t, ReasonClosedDay, snap.Reason)
	assert.Equal(t, 0.0, snap.RemainingUnits)
	assert.Equal(t, "Conference", snap.Notes)
	assert.False(t, snap.Offerable())
}

func TestRemainingComputesConsumedAndRemaining(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID:           "D001",
		Date:               testDay,
		IsAvailable:        true,
		DailyCapacityUnits: 4,
	}))
	require.NoError(t, store.Append(context.Background(), &Appointment{
		DoctorID: "D001", Date: testDay, Duration: Duration45, Units: 1.5, Status: StatusBooked,
	}))
	require.NoError(t, store.Append(context.Background(), &Appointment{
		DoctorID: "D001", Date: testDay, Duration: Duration30, Units: 1.0, Status: StatusBooked,
	}))
	// Cancelled rows never count against capacity.
	require.NoError(t, store.Append(context.Background(), &Appointment{
		DoctorID: "D001", Date: testDay, Duration: Duration60, Units: 2.0, Status: StatusCancelled,
	}))

	calc := NewCapacityCalculator(store, store)
	snap, err := calc.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	assert.Equal(t, ReasonOpen, snap.Reason)
	assert.Equal(t, 2.5, snap.ConsumedUnits)
	assert.Equal(t, 1.5, snap.RemainingUnits)
	assert.True(t, snap.Offerable())
}

func TestRemainingIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID: "D001", Date: testDay, IsAvailable: true, DailyCapacityUnits: 4,
	}))
	calc := NewCapacityCalculator(store, store)

	first, err := calc.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	second, err := calc.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRemainingNeverNegative(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID: "D001", Date: testDay, IsAvailable: true, DailyCapacityUnits: 1,
	}))
	// Over-consumed ledger, e.g. capacity was lowered after bookings existed.
	require.NoError(t, store.Append(context.Background(), &Appointment{
		DoctorID: "D001", Date: testDay, Duration: Duration60, Units: 2.0, Status: StatusBooked,
	}))

	calc := NewCapacityCalculator(store, store)
	snap, err := calc.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.RemainingUnits)
	assert.Equal(t, ReasonFullyBooked, snap.Reason)
}

func TestRemainingRoundsToTwoDecimals(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID: "D001", Date: testDay, IsAvailable: true, DailyCapacityUnits: 4,
	}))
	// Ten 0.3-unit rows sum to 2.9999999... in binary floats.
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(context.Background(), &Appointment{
			DoctorID: "D001", Date: testDay, Units: 0.3, Status: StatusBooked,
		}))
	}

	calc := NewCapacityCalculator(store, store)
	snap, err := calc.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	assert.Equal(t, 3.0, snap.ConsumedUnits)
	assert.Equal(t, 1.0, snap.RemainingUnits)
}

func TestOfferableDates(t *testing.T) {
	store := NewMemoryStore()
	d1 := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID: "D001", Date: d1, IsAvailable: true, DailyCapacityUnits: 2,
	}))
	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID: "D001", Date: d2, IsAvailable: false, DailyCapacityUnits: 2,
	}))
	// d3 has no record at all.

	calc := NewCapacityCalculator(store, store)
	snaps, err := calc.OfferableDates(context.Background(), "D001", d1, d3)
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	assert.True(t, snaps[0].Offerable())
	assert.Equal(t, ReasonClosedDay, snaps[1].Reason)
	assert.Equal(t, ReasonNoData, snaps[2].Reason)

	_, err = calc.OfferableDates(context.Background(), "D001", d3, d1)
	assert.Error(t, err)
}

func TestDuplicateAvailabilityIsRejected(t *testing.T) {
	store := NewMemoryStore()
	rec := AvailabilityRecord{DoctorID: "D001", Date: testDay, IsAvailable: true, DailyCapacityUnits: 2}
	require.NoError(t, store.AddAvailability(rec))
	assert.ErrorIs(t, store.AddAvailability(rec), ErrDuplicateAvailability)
}
