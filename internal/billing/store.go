package billing

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateStore loads the fee and discount tables once per session.
type RateStore interface {
	// FeeTable returns base fees keyed by specialty.
	FeeTable(ctx context.Context) (map[string]float64, error)
	// DiscountTable returns discount percents keyed by insurance id.
	DiscountTable(ctx context.Context) (map[string]float64, error)
}

// Record is one persisted billing entry. Whether a visit is billed once is
// the caller's policy, not enforced here.
type Record struct {
	PatientID       string
	PatientName     string
	DoctorName      string
	AppointmentDate time.Time
	NetCost         float64
	BilledAt        time.Time
}

// RecordStore appends billing records to durable storage.
type RecordStore interface {
	AppendRecord(ctx context.Context, rec Record) error
}

// LoadCalculator reads both rate tables and builds a calculator from them.
func LoadCalculator(ctx context.Context, rates RateStore) (*Calculator, error) {
	fees, err := rates.FeeTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fee table: %w", err)
	}
	discounts, err := rates.DiscountTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load discount table: %w", err)
	}
	return NewCalculator(fees, discounts), nil
}

// MemoryRecordStore collects billing records in memory for tests and the
// embedded mode.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records []Record

	appendErr error
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

func (s *MemoryRecordStore) AppendRecord(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, rec)
	return nil
}

// FailAppendsWith makes every subsequent AppendRecord return err.
func (s *MemoryRecordStore) FailAppendsWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

// Records returns a copy of everything appended so far.
func (s *MemoryRecordStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
