package billing

import (
	"context"
	"fmt"

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

func (s *PgStore) FeeTable(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT specialty, base_fee
		FROM doctor_fees
	`)
	if err != nil {
		return nil, fmt.Errorf("query doctor fees: %w", err)
	}
	defer rows.Close()

	fees := make(map[string]float64)
	for rows.Next() {
		var specialty string
		var fee float64
		if err := rows.Scan(&specialty, &fee); err != nil {
			return nil, err
		}
		fees[specialty] = fee
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fees, nil
}

func (s *PgStore) DiscountTable(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT insurance_id, discount_percent
		FROM insurance_discounts
	`)
	if err != nil {
		return nil, fmt.Errorf("query insurance discounts: %w", err)
	}
	defer rows.Close()

	discounts := make(map[string]float64)
	for rows.Next() {
		var id string
		var pct float64
		if err := rows.Scan(&id, &pct); err != nil {
			return nil, err
		}
		discounts[id] = pct
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return discounts, nil
}

func (s *PgStore) AppendRecord(ctx context.Context, rec Record) error {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO billing_records
			(patient_id, patient_name, doctor_name, appointment_date, net_cost, billed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		rec.PatientID,
		rec.PatientName,
		rec.DoctorName,
		rec.AppointmentDate,
		rec.NetCost,
		rec.BilledAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert billing record: %w", err)
	}
	return nil
}
