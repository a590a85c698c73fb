package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a Store kept entirely in memory. It backs tests and the
// embedded single-process mode where availability is loaded once at startup.
type MemoryStore struct {
	mu           sync.RWMutex
	availability map[string]*AvailabilityRecord
	appointments []*Appointment
	events       []BookingEvent
	nextEventID  int64

	appendErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		availability: make(map[string]*AvailabilityRecord),
		nextEventID:  1,
	}
}

func availabilityKey(doctorID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", doctorID, Day(date).Format(time.DateOnly))
}

// AddAvailability registers a clinic day. A second record for the same
// doctor-day is a data-integrity error.
func (s *MemoryStore) AddAvailability(rec AvailabilityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Date = Day(rec.Date)
	key := availabilityKey(rec.DoctorID, rec.Date)
	if _, exists := s.availability[key]; exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicateAvailability, rec.DoctorID, rec.Date.Format(time.DateOnly))
	}

	s.availability[key] = &rec
	return nil
}

// FailAppendsWith makes every subsequent Append return err. Tests use it to
// exercise persistence failures; pass nil to restore normal behavior.
func (s *MemoryStore) FailAppendsWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

func (s *MemoryStore) Lookup(_ context.Context, doctorID string, date time.Time) (*AvailabilityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.availability[availabilityKey(doctorID, date)]
	if !ok {
		return nil, ErrAvailabilityNotFound
	}

	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) BookedUnitsFor(_ context.Context, doctorID string, date time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := Day(date)
	var sum float64
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.Date.Equal(day) && a.Status == StatusBooked {
			sum += a.Units
		}
	}
	return sum, nil
}

func (s *MemoryStore) Append(_ context.Context, appt *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return s.appendErr
	}

	cp := *appt
	cp.Date = Day(cp.Date)
	s.appointments = append(s.appointments, &cp)
	return nil
}

func (s *MemoryStore) InsertEvent(_ context.Context, ev BookingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = s.nextEventID
	s.nextEventID++
	s.events = append(s.events, ev)
	return nil
}

func (s *MemoryStore) DailyUtilization(_ context.Context, from, to time.Time) ([]UtilizationRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from = Day(from)
	to = Day(to)

	var result []UtilizationRow
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, rec := range s.availability {
			if !rec.Date.Equal(day) || !rec.IsAvailable {
				continue
			}
			row := UtilizationRow{
				DoctorID:           rec.DoctorID,
				Date:               rec.Date,
				DailyCapacityUnits: rec.DailyCapacityUnits,
			}
			for _, a := range s.appointments {
				if a.DoctorID == rec.DoctorID && a.Date.Equal(day) && a.Status == StatusBooked {
					row.ConsumedUnits += a.Units
				}
			}
			result = append(result, row)
		}
	}
	return result, nil
}

// Appointments returns a copy of the ledger, oldest first.
func (s *MemoryStore) Appointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, *a)
	}
	return out
}

// Events returns a copy of the recorded booking events.
func (s *MemoryStore) Events() []BookingEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]BookingEvent, len(s.events))
	copy(out, s.events)
	return out
}
