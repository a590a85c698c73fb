package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type PgStore struct {
	pool pgPool
}

// pgPool is the slice of pgxpool.Pool the store uses; tests substitute pgxmock.
type pgPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func NewPgStore(pool pgPool) *PgStore {
	return &PgStore{pool: pool}
}

// Helpers

func scanAvailability(row pgx.Row) (*AvailabilityRecord, error) {
	var rec AvailabilityRecord
	var notes *string

	err := row.Scan(
		&rec.DoctorID,
		&rec.Date,
		&rec.IsAvailable,
		&rec.DailyCapacityUnits,
		&notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}

	if notes != nil {
		rec.Notes = *notes
	}
	rec.Date = Day(rec.Date)
	return &rec, nil
}

// Interface methods

func (s *PgStore) Lookup(ctx context.Context, doctorID string, date time.Time) (*AvailabilityRecord, error) {
	// LIMIT 1 keeps first-match-wins semantics if the table ever carries a
	// duplicate doctor-day row.
	row := s.pool.QueryRow(ctx, `
		SELECT doctor_id, date, is_available, daily_capacity_units, notes
		FROM availability
		WHERE doctor_id = $1 AND date = $2
		ORDER BY id
		LIMIT 1
	`, doctorID, Day(date))
	return scanAvailability(row)
}

func (s *PgStore) BookedUnitsFor(ctx context.Context, doctorID string, date time.Time) (float64, error) {
	var units float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(units), 0)
		FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status = $3
	`, doctorID, Day(date), string(StatusBooked)).Scan(&units)
	if err != nil {
		return 0, fmt.Errorf("sum booked units: %w", err)
	}
	return units, nil
}

func (s *PgStore) Append(ctx context.Context, appt *Appointment) error {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, doctor_id, doctor_name, date, duration_minutes, units,
			 patient_id, patient_name, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		appt.ID,
		appt.DoctorID,
		appt.DoctorName,
		appt.Date,
		int(appt.Duration),
		appt.Units,
		nullableString(appt.PatientID),
		appt.PatientName,
		string(appt.Status),
		appt.ScheduledAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *PgStore) InsertEvent(ctx context.Context, ev BookingEvent) error {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO booking_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		RETURNING id
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt)).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert booking event: %w", err)
	}
	return nil
}

func (s *PgStore) DailyUtilization(ctx context.Context, from, to time.Time) ([]UtilizationRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.doctor_id, a.date, a.daily_capacity_units,
		       COALESCE(SUM(ap.units), 0) AS consumed
		FROM availability a
		LEFT JOIN appointments ap
		  ON ap.doctor_id = a.doctor_id AND ap.date = a.date AND ap.status = $3
		WHERE a.date >= $1 AND a.date <= $2 AND a.is_available
		GROUP BY a.doctor_id, a.date, a.daily_capacity_units
		ORDER BY a.date, a.doctor_id
	`, Day(from), Day(to), string(StatusBooked))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UtilizationRow
	for rows.Next() {
		var r UtilizationRow
		if err := rows.Scan(&r.DoctorID, &r.Date, &r.DailyCapacityUnits, &r.ConsumedUnits); err != nil {
			return nil, err
		}
		r.Date = Day(r.Date)
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
