package scheduling

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAvailabilityNotFound  = errors.New("availability record not found")
	ErrDuplicateAvailability = errors.New("duplicate availability record for doctor and date")
)

// AvailabilityStore is the read-only per-(doctor, date) schedule source.
// A lookup miss means no clinic day is configured; callers treat it as unavailable.
type AvailabilityStore interface {
	Lookup(ctx context.Context, doctorID string, date time.Time) (*AvailabilityRecord, error)
}

// AppointmentLedger holds committed appointments and is the source of truth
// for capacity already consumed. The booking engine is its only writer.
type AppointmentLedger interface {
	// BookedUnitsFor sums units over Booked appointments for the doctor-day.
	// Returns 0 when there are none.
	BookedUnitsFor(ctx context.Context, doctorID string, date time.Time) (float64, error)
	// Append adds a new Booked appointment. Persistence failures propagate
	// unchanged; the booking is not committed if this fails.
	Append(ctx context.Context, appt *Appointment) error
}

// Store bundles everything the booking engine and report worker need.
type Store interface {
	AvailabilityStore
	AppointmentLedger

	InsertEvent(ctx context.Context, ev BookingEvent) error
	DailyUtilization(ctx context.Context, from, to time.Time) ([]UtilizationRow, error)
}
