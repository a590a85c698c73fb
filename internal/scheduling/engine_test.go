package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-scheduling/pkg/logging"
)

var testDay = time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	engine := NewEngine(store, NewMutexLocker(), nil, logging.New("error"))
	return engine, store
}

func addDay(t *testing.T, store *MemoryStore, doctorID string, available bool, units float64) {
	t.Helper()
	require.NoError(t, store.AddAvailability(AvailabilityRecord{
		DoctorID:           doctorID,
		Date:               testDay,
		IsAvailable:        available,
		DailyCapacityUnits: units,
	}))
}

func bookingReq(doctorID string, d Duration) BookingRequest {
	return BookingRequest{
		DoctorID:    doctorID,
		DoctorName:  "Dr. Daniel Blake",
		PatientID:   "P100",
		PatientName: "Alice Moore",
		Date:        testDay,
		Duration:    d,
	}
}

func TestBookFillsDayThenRejects(t *testing.T) {
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", true, 2)

	appt, err := engine.Book(context.Background(), bookingReq("D001", Duration60))
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, appt.Status)
	assert.Equal(t, 2.0, appt.Units)
	assert.Equal(t, "D001", appt.DoctorID)
	assert.NotEqual(t, uuid.Nil, appt.ID, "appointment id must be set")

	snap, err := engine.capacity.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.RemainingUnits)
	assert.Equal(t, ReasonFullyBooked, snap.Reason)

	_, err = engine.Book(context.Background(), bookingReq("D001", Duration30))
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
}

func TestBookRejectsClosedDay(t *testing.T) {
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", false, 10)

	_, err := engine.Book(context.Background(), bookingReq("D001", Duration30))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, store.Appointments())
}

func TestBookFailsClosedWithoutAvailabilityRecord(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Book(context.Background(), bookingReq("D002", Duration30))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestBookRejectsMissingDoctor(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Book(context.Background(), bookingReq("", Duration30))
	assert.ErrorIs(t, err, ErrNoDoctor)
}

func TestRejectionOrdering(t *testing.T) {
	// An invalid duration on a day with no remaining capacity must be
	// rejected for the duration, which is checked first.
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", true, 1)

	_, err := engine.Book(context.Background(), bookingReq("D001", Duration30))
	require.NoError(t, err)

	_, err = engine.Book(context.Background(), bookingReq("D001", Duration(50)))
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestMonotonicConsumption(t *testing.T) {
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", true, 6)

	ctx := context.Background()
	for _, d := range []Duration{Duration30, Duration45, Duration60} {
		before, err := engine.capacity.Remaining(ctx, "D001", testDay)
		require.NoError(t, err)

		_, err = engine.Book(ctx, bookingReq("D001", d))
		require.NoError(t, err)

		after, err := engine.capacity.Remaining(ctx, "D001", testDay)
		require.NoError(t, err)
		assert.InDelta(t, d.Units(), before.RemainingUnits-after.RemainingUnits, 0.01)
	}
}

func TestCapacityConservation(t *testing.T) {
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", true, 5)

	ctx := context.Background()
	durations := []Duration{Duration60, Duration45, Duration30, Duration60, Duration45, Duration30, Duration30}
	for _, d := range durations {
		_, err := engine.Book(ctx, bookingReq("D001", d))
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientCapacity)
		}
	}

	var total float64
	for _, a := range store.Appointments() {
		total += a.Units
	}
	assert.LessOrEqual(t, total, 5.0)
}

func TestCapacityConservationUnderConcurrency(t *testing.T) {
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", true, 4)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.Book(context.Background(), bookingReq("D001", Duration60))
		}()
	}
	wg.Wait()

	var total float64
	for _, a := range store.Appointments() {
		total += a.Units
	}
	assert.LessOrEqual(t, total, 4.0)
	assert.Len(t, store.Appointments(), 2, "exactly two 2.0-unit bookings fit in 4 units")
}

func TestBookPropagatesPersistenceError(t *testing.T) {
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", true, 4)

	writeErr := errors.New("disk full")
	store.FailAppendsWith(writeErr)

	_, err := engine.Book(context.Background(), bookingReq("D001", Duration30))
	assert.ErrorIs(t, err, writeErr)

	// The failed booking consumed nothing.
	store.FailAppendsWith(nil)
	snap, err := engine.capacity.Remaining(context.Background(), "D001", testDay)
	require.NoError(t, err)
	assert.Equal(t, 4.0, snap.RemainingUnits)
}

func TestBookNotifiesCommittedFact(t *testing.T) {
	store := NewMemoryStore()
	addDay(t, store, "D001", true, 4)

	var gotDuration Duration
	var gotDate time.Time
	notifier := NotifierFunc(func(d Duration, date time.Time) {
		gotDuration = d
		gotDate = date
	})

	engine := NewEngine(store, NewMutexLocker(), notifier, logging.New("error"))

	_, err := engine.Book(context.Background(), bookingReq("D001", Duration45))
	require.NoError(t, err)
	assert.Equal(t, Duration45, gotDuration)
	assert.True(t, gotDate.Equal(testDay))
}

func TestBookRecordsEvents(t *testing.T) {
	engine, store := newTestEngine(t)
	addDay(t, store, "D001", true, 1)

	_, err := engine.Book(context.Background(), bookingReq("D001", Duration30))
	require.NoError(t, err)

	_, err = engine.Book(context.Background(), bookingReq("D001", Duration30))
	require.ErrorIs(t, err, ErrInsufficientCapacity)

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventBookingCommitted, events[0].EventType)
	assert.NotNil(t, events[0].AppointmentID)
	assert.Equal(t, EventBookingRejected, events[1].EventType)
	assert.Nil(t, events[1].AppointmentID)
}

func TestDurationUnits(t *testing.T) {
	assert.Equal(t, 1.0, Duration30.Units())
	assert.Equal(t, 1.5, Duration45.Units())
	assert.Equal(t, 2.0, Duration60.Units())
	assert.False(t, Duration(50).Valid())
	assert.True(t, Duration45.Valid())
}
