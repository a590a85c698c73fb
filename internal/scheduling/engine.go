package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/clinicore/clinic-scheduling/internal/redis"
	"github.com/clinicore/clinic-scheduling/pkg/logging"
)

const (
	EventBookingCommitted = "BOOKING_COMMITTED"
	EventBookingRejected  = "BOOKING_REJECTED"
)

// Rejection reasons, in the order the engine checks them. The first failing
// check decides which one the caller sees.
var (
	ErrNoDoctor             = errors.New("doctor id is required")
	ErrUnavailable          = errors.New("doctor is unavailable on this date")
	ErrInvalidDuration      = errors.New("duration must be 30, 45 or 60 minutes")
	ErrInsufficientCapacity = errors.New("not enough capacity left on this date")
	ErrBookingInProgress    = errors.New("another booking for this doctor and date is in progress, please retry")
)

// Notifier receives the committed fact once a booking lands in the ledger.
// This is the single point where the engine hands a result back out.
type Notifier interface {
	BookingCommitted(duration Duration, date time.Time)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(duration Duration, date time.Time)

func (f NotifierFunc) BookingCommitted(duration Duration, date time.Time) {
	f(duration, date)
}

// Engine validates booking requests against current capacity and commits
// accepted ones to the ledger. The capacity check and the append run under a
// per-(doctor, date) lock so two requests for the same day cannot both pass a
// stale capacity read.
type Engine struct {
	store    Store
	capacity *CapacityCalculator
	locker   redisclient.Locker
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

// NewEngine builds a booking engine. notifier may be nil.
func NewEngine(store Store, locker redisclient.Locker, notifier Notifier, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:    store,
		capacity: NewCapacityCalculator(store, store),
		locker:   locker,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Book runs the request through the validation sequence and, if every check
// passes, appends a Booked appointment to the ledger. Rejections carry one of
// the sentinel errors above and leave no state behind.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.DoctorID == "" {
		return nil, e.reject(ctx, req, ErrNoDoctor)
	}

	date := Day(req.Date)

	rec, err := e.store.Lookup(ctx, req.DoctorID, date)
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			// Fail closed: no configured clinic day means unavailable.
			return nil, e.reject(ctx, req, ErrUnavailable)
		}
		return nil, fmt.Errorf("lookup availability: %w", err)
	}
	if !rec.IsAvailable {
		return nil, e.reject(ctx, req, ErrUnavailable)
	}

	if !req.Duration.Valid() {
		return nil, e.reject(ctx, req, ErrInvalidDuration)
	}

	var created *Appointment

	err = e.locker.WithScheduleLock(ctx, req.DoctorID, date, func(lockCtx context.Context) error {
		// Re-check inside the critical section so the capacity read and the
		// append observe the same ledger state.
		snap, err := e.capacity.Remaining(lockCtx, req.DoctorID, date)
		if err != nil {
			return err
		}
		if !snap.Offerable() && snap.Reason != ReasonFullyBooked {
			return ErrUnavailable
		}

		units := req.Duration.Units()
		if snap.RemainingUnits < units {
			return ErrInsufficientCapacity
		}

		appt := &Appointment{
			ID:          uuid.New(),
			DoctorID:    req.DoctorID,
			DoctorName:  req.DoctorName,
			Date:        date,
			Duration:    req.Duration,
			Units:       units,
			PatientID:   req.PatientID,
			PatientName: req.PatientName,
			Status:      StatusBooked,
			ScheduledAt: e.now(),
		}

		if err := e.store.Append(lockCtx, appt); err != nil {
			return fmt.Errorf("append appointment: %w", err)
		}

		created = appt

		e.logEvent(lockCtx, &appt.ID, EventBookingCommitted, map[string]any{
			"doctor_id":        appt.DoctorID,
			"date":             date.Format(time.DateOnly),
			"duration_minutes": int(appt.Duration),
			"units":            appt.Units,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInsufficientCapacity) {
			return nil, e.reject(ctx, req, err)
		}
		return nil, err
	}

	e.logger.Info("booking committed",
		"appointment_id", created.ID,
		"doctor_id", created.DoctorID,
		"date", date.Format(time.DateOnly),
		"duration_minutes", int(created.Duration),
		"units", created.Units,
	)

	if e.notifier != nil {
		e.notifier.BookingCommitted(created.Duration, created.Date)
	}

	return created, nil
}

// reject records the rejection for the audit trail and hands the sentinel
// back unchanged. Rejections never mutate the ledger.
func (e *Engine) reject(ctx context.Context, req BookingRequest, reason error) error {
	e.logger.Info("booking rejected",
		"doctor_id", req.DoctorID,
		"date", Day(req.Date).Format(time.DateOnly),
		"duration_minutes", int(req.Duration),
		"reason", reason.Error(),
	)

	e.logEvent(ctx, nil, EventBookingRejected, map[string]any{
		"doctor_id":        req.DoctorID,
		"date":             Day(req.Date).Format(time.DateOnly),
		"duration_minutes": int(req.Duration),
		"reason":           reason.Error(),
	})

	return reason
}

// logEvent writes an audit entry best-effort; a failed event write never
// fails the booking it describes.
func (e *Engine) logEvent(ctx context.Context, appointmentID *uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("marshal event payload", "event_type", eventType, "error", err)
		data = nil
	}

	ev := BookingEvent{
		EventType:     eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     e.now(),
	}

	if err := e.store.InsertEvent(ctx, ev); err != nil {
		e.logger.Error("insert booking event", "event_type", eventType, "error", err)
	}
}
