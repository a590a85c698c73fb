package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Duration is an appointment length in minutes. Only 30, 45 and 60 are bookable.
type Duration int

const (
	Duration30 Duration = 30
	Duration45 Duration = 45
	Duration60 Duration = 60
)

func (d Duration) Valid() bool {
	switch d {
	case Duration30, Duration45, Duration60:
		return true
	}
	return false
}

// Units converts a duration into capacity units. 30 minutes = 1.0 unit.
// Invalid durations cost 0 units; they never reach the ledger.
func (d Duration) Units() float64 {
	switch d {
	case Duration30:
		return 1.0
	case Duration45:
		return 1.5
	case Duration60:
		return 2.0
	}
	return 0
}

type AppointmentStatus string

const (
	StatusBooked AppointmentStatus = "Booked"
	// StatusCancelled is reserved for a cancellation flow; the engine never produces it.
	StatusCancelled AppointmentStatus = "Cancelled"
)

type Appointment struct {
	ID          uuid.UUID
	DoctorID    string
	DoctorName  string
	Date        time.Time // calendar day, midnight UTC
	Duration    Duration
	Units       float64
	PatientID   string // optional
	PatientName string
	Status      AppointmentStatus
	ScheduledAt time.Time
}

// AvailabilityRecord says whether a doctor works on a date and how many
// capacity units that day carries. This module only reads these records;
// availability is managed out of band (seed tooling, admin SQL).
type AvailabilityRecord struct {
	DoctorID           string
	Date               time.Time
	IsAvailable        bool
	DailyCapacityUnits float64
	Notes              string
}

// CapacityReason explains why a day is or is not offerable.
type CapacityReason string

const (
	ReasonOpen        CapacityReason = "open"
	ReasonNoData      CapacityReason = "no_data"
	ReasonClosedDay   CapacityReason = "closed_day"
	ReasonFullyBooked CapacityReason = "fully_booked"
)

// CapacitySnapshot is derived from the availability record and the ledger at
// query time. It is never cached across a booking commit.
type CapacitySnapshot struct {
	DoctorID           string
	Date               time.Time
	Reason             CapacityReason
	DailyCapacityUnits float64
	ConsumedUnits      float64
	RemainingUnits     float64
	Notes              string
}

// Offerable reports whether the day can be shown as bookable on a calendar.
func (s CapacitySnapshot) Offerable() bool {
	return s.Reason == ReasonOpen
}

type BookingRequest struct {
	DoctorID    string
	DoctorName  string
	PatientID   string
	PatientName string
	Date        time.Time
	Duration    Duration
}

// BookingEvent is an audit trail entry written alongside commits and rejections.
type BookingEvent struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// UtilizationRow summarizes booked units against capacity for one doctor-day.
type UtilizationRow struct {
	DoctorID           string
	Date               time.Time
	DailyCapacityUnits float64
	ConsumedUnits      float64
}

// Day normalizes a timestamp to its calendar day at midnight UTC. All dates
// handed to stores and lockers go through this so map keys and SQL date
// comparisons line up.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
