package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	DoctorID        string `json:"doctor_id"`
	DoctorName      string `json:"doctor_name,omitempty"`
	PatientID       string `json:"patient_id,omitempty"`
	PatientName     string `json:"patient_name"`
	Date            string `json:"date"` // YYYY-MM-DD
	DurationMinutes int    `json:"duration_minutes"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        string    `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	Date            string    `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
	Units           float64   `json:"units"`
	PatientID       string    `json:"patient_id,omitempty"`
	PatientName     string    `json:"patient_name,omitempty"`
	Status          string    `json:"status"`
	ScheduledAt     time.Time `json:"scheduled_at"`
}

type CapacityResponse struct {
	DoctorID           string  `json:"doctor_id"`
	Date               string  `json:"date"`
	Reason             string  `json:"reason"`
	Offerable          bool    `json:"offerable"`
	DailyCapacityUnits float64 `json:"daily_capacity_units"`
	ConsumedUnits      float64 `json:"consumed_units"`
	RemainingUnits     float64 `json:"remaining_units"`
	Notes              string  `json:"notes,omitempty"`
}

type CalendarResponse struct {
	DoctorID string             `json:"doctor_id"`
	From     string             `json:"from"`
	To       string             `json:"to"`
	Days     []CapacityResponse `json:"days"`
}

type QuoteRequest struct {
	Specialty       string `json:"specialty"`
	DurationMinutes int    `json:"duration_minutes"`
	InsuranceID     string `json:"insurance_id,omitempty"`
}

type QuoteResponse struct {
	BaseFee         float64 `json:"base_fee"`
	TimeMultiplier  float64 `json:"time_multiplier"`
	GrossCost       float64 `json:"gross_cost"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	NetCost         float64 `json:"net_cost"`
}

type CreateBillingRecordRequest struct {
	PatientID       string  `json:"patient_id,omitempty"`
	PatientName     string  `json:"patient_name"`
	DoctorName      string  `json:"doctor_name"`
	AppointmentDate string  `json:"appointment_date"` // YYYY-MM-DD
	NetCost         float64 `json:"net_cost"`
}

type BillingRecordResponse struct {
	PatientID       string    `json:"patient_id,omitempty"`
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	AppointmentDate string    `json:"appointment_date"`
	NetCost         float64   `json:"net_cost"`
	BilledAt        time.Time `json:"billed_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
