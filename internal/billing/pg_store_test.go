package billing

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgStoreRateTables(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT specialty, base_fee`).
		WillReturnRows(pgxmock.NewRows([]string{"specialty", "base_fee"}).
			AddRow("Cardiology", 200.0).
			AddRow("Neurology", 150.0))
	mock.ExpectQuery(`SELECT insurance_id, discount_percent`).
		WillReturnRows(pgxmock.NewRows([]string{"insurance_id", "discount_percent"}).
			AddRow("INS1", 20.0))

	store := NewPgStore(mock)
	calc, err := LoadCalculator(context.Background(), store)
	require.NoError(t, err)

	q := calc.Quote("cardiology", 45, "INS1")
	assert.Equal(t, 320.0, q.NetCost)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreAppendRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := Record{
		PatientID:       "P100",
		PatientName:     "Alice Moore",
		DoctorName:      "Dr. Daniel Blake",
		AppointmentDate: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
		NetCost:         320,
		BilledAt:        time.Now().UTC(),
	}

	mock.ExpectQuery(`INSERT INTO billing_records`).
		WithArgs(rec.PatientID, rec.PatientName, rec.DoctorName, rec.AppointmentDate, rec.NetCost, rec.BilledAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	store := NewPgStore(mock)
	require.NoError(t, store.AppendRecord(context.Background(), rec))

	require.NoError(t, mock.ExpectationsWereMet())
}
