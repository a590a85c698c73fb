package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/clinic-scheduling/internal/billing"
	"github.com/clinicore/clinic-scheduling/internal/observability/metrics"
	"github.com/clinicore/clinic-scheduling/internal/scheduling"
)

func capacitySnapshotResponse(snap scheduling.CapacitySnapshot) CapacityResponse {
	return CapacityResponse{
		DoctorID:           snap.DoctorID,
		Date:               snap.Date.Format(time.DateOnly),
		Reason:             string(snap.Reason),
		Offerable:          snap.Offerable(),
		DailyCapacityUnits: snap.DailyCapacityUnits,
		ConsumedUnits:      snap.ConsumedUnits,
		RemainingUnits:     snap.RemainingUnits,
		Notes:              snap.Notes,
	}
}

func capacityHandler(calc *scheduling.CapacityCalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctorID")

		date, err := time.Parse(time.DateOnly, r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		snap, err := calc.Remaining(r.Context(), doctorID, date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, capacitySnapshotResponse(snap))
	}
}

func calendarHandler(calc *scheduling.CapacityCalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctorID")

		from, err := time.Parse(time.DateOnly, r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD")
			return
		}
		to, err := time.Parse(time.DateOnly, r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", "to must be YYYY-MM-DD")
			return
		}

		snaps, err := calc.OfferableDates(r.Context(), doctorID, from, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}

		resp := CalendarResponse{
			DoctorID: doctorID,
			From:     from.Format(time.DateOnly),
			To:       to.Format(time.DateOnly),
			Days:     make([]CapacityResponse, 0, len(snaps)),
		}
		for _, snap := range snaps {
			resp.Days = append(resp.Days, capacitySnapshotResponse(snap))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// BookingEngine is the slice of scheduling.Engine the handlers use.
type BookingEngine interface {
	Book(ctx context.Context, req scheduling.BookingRequest) (*scheduling.Appointment, error)
}

func createBookingHandler(engine BookingEngine, m *metrics.BookingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		start := time.Now()
		appt, err := engine.Book(r.Context(), scheduling.BookingRequest{
			DoctorID:    req.DoctorID,
			DoctorName:  req.DoctorName,
			PatientID:   req.PatientID,
			PatientName: req.PatientName,
			Date:        date,
			Duration:    scheduling.Duration(req.DurationMinutes),
		})
		m.ObserveBookingLatency(time.Since(start).Seconds())

		if err != nil {
			handleBookingError(w, err, m)
			return
		}

		m.ObserveCommitted(strconv.Itoa(int(appt.Duration)))

		writeJSON(w, http.StatusCreated, AppointmentResponse{
			ID:              appt.ID,
			DoctorID:        appt.DoctorID,
			DoctorName:      appt.DoctorName,
			Date:            appt.Date.Format(time.DateOnly),
			DurationMinutes: int(appt.Duration),
			Units:           appt.Units,
			PatientID:       appt.PatientID,
			PatientName:     appt.PatientName,
			Status:          string(appt.Status),
			ScheduledAt:     appt.ScheduledAt,
		})
	}
}

func handleBookingError(w http.ResponseWriter, err error, m *metrics.BookingMetrics) {
	switch {
	case errors.Is(err, scheduling.ErrNoDoctor):
		m.ObserveRejected("no_doctor")
		writeError(w, http.StatusBadRequest, "no_doctor", err.Error())
	case errors.Is(err, scheduling.ErrInvalidDuration):
		m.ObserveRejected("invalid_duration")
		writeError(w, http.StatusBadRequest, "invalid_duration", err.Error())
	case errors.Is(err, scheduling.ErrUnavailable):
		m.ObserveRejected("date_unavailable")
		writeError(w, http.StatusConflict, "date_unavailable", err.Error())
	case errors.Is(err, scheduling.ErrInsufficientCapacity):
		m.ObserveRejected("insufficient_capacity")
		writeError(w, http.StatusConflict, "insufficient_capacity", err.Error())
	case errors.Is(err, scheduling.ErrBookingInProgress):
		m.ObserveRejected("booking_in_progress")
		writeError(w, http.StatusConflict, "booking_in_progress", "another booking for this doctor and date is in progress, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func quoteHandler(calc *billing.Calculator, m *metrics.BookingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QuoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		q := calc.Quote(req.Specialty, scheduling.Duration(req.DurationMinutes), req.InsuranceID)
		m.ObserveQuote()

		writeJSON(w, http.StatusOK, QuoteResponse{
			BaseFee:         q.BaseFee,
			TimeMultiplier:  q.TimeMultiplier,
			GrossCost:       q.GrossCost,
			DiscountPercent: q.DiscountPercent,
			DiscountAmount:  q.DiscountAmount,
			NetCost:         q.NetCost,
		})
	}
}

func createBillingRecordHandler(records billing.RecordStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBillingRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := time.Parse(time.DateOnly, req.AppointmentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_date", "appointment_date must be YYYY-MM-DD")
			return
		}

		rec := billing.Record{
			PatientID:       req.PatientID,
			PatientName:     req.PatientName,
			DoctorName:      req.DoctorName,
			AppointmentDate: date,
			NetCost:         req.NetCost,
			BilledAt:        time.Now(),
		}

		if err := records.AppendRecord(r.Context(), rec); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, BillingRecordResponse{
			PatientID:       rec.PatientID,
			PatientName:     rec.PatientName,
			DoctorName:      rec.DoctorName,
			AppointmentDate: rec.AppointmentDate.Format(time.DateOnly),
			NetCost:         rec.NetCost,
			BilledAt:        rec.BilledAt,
		})
	}
}
