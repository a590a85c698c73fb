package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// simulate fires concurrent booking requests at a small set of doctor-days so
// capacity contention is guaranteed, then prints what the API decided. With
// the per-(doctor,date) lock in place the sum of accepted units must never
// exceed a day's budget, no matter how many workers race.

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	DoctorIDs  []string
	Dates      []string
}

type OperationMetrics struct {
	Total     int64
	Accepted  int64
	Rejected  int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&om.Accepted, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	case status >= 400 && status < 500:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	idx := func(pct int) int {
		i := len(latencies) * pct / 100
		if i >= len(latencies) {
			i = len(latencies) - 1
		}
		return i
	}
	return avg, latencies[idx(50)], latencies[idx(95)]
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := loadSimConfig()
	log.Printf("simulate: url=%s duration=%s workers=%d doctors=%d dates=%d",
		cfg.APIBaseURL, cfg.Duration, cfg.Workers, len(cfg.DoctorIDs), len(cfg.Dates))

	gofakeit.Seed(time.Now().UnixNano())

	metrics := &OperationMetrics{}
	client := &http.Client{Timeout: 10 * time.Second}
	durations := []int{30, 45, 60}

	deadline := time.Now().Add(cfg.Duration)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				doctorID := cfg.DoctorIDs[rand.Intn(len(cfg.DoctorIDs))]
				date := cfg.Dates[rand.Intn(len(cfg.Dates))]
				duration := durations[rand.Intn(len(durations))]

				status, latency, err := postBooking(client, cfg.APIBaseURL, doctorID, date, duration)
				if err != nil {
					atomic.AddInt64(&metrics.Total, 1)
					atomic.AddInt64(&metrics.Error, 1)
					continue
				}
				metrics.Record(latency, status)
			}
		}()
	}

	wg.Wait()

	avg, p50, p95 := metrics.Stats()
	fmt.Println("=== booking simulation ===")
	fmt.Printf("total:     %d\n", metrics.Total)
	fmt.Printf("accepted:  %d\n", metrics.Accepted)
	fmt.Printf("conflict:  %d (unavailable / insufficient capacity / lock contention)\n", metrics.Conflict)
	fmt.Printf("rejected:  %d (bad input)\n", metrics.Rejected)
	fmt.Printf("errors:    %d\n", metrics.Error)
	fmt.Printf("latency:   avg=%s p50=%s p95=%s\n", avg, p50, p95)
}

func postBooking(client *http.Client, baseURL, doctorID, date string, durationMinutes int) (int, time.Duration, error) {
	body, err := json.Marshal(map[string]any{
		"doctor_id":        doctorID,
		"patient_id":       uuid.NewString(),
		"patient_name":     gofakeit.Name(),
		"date":             date,
		"duration_minutes": durationMinutes,
	})
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	resp, err := client.Post(baseURL+"/bookings", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, latency, nil
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL: getEnv("SIM_API_URL", "http://127.0.0.1:8080"),
		Duration:   30 * time.Second,
		Workers:    16,
	}

	if v := os.Getenv("SIM_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Duration = d
		}
	}
	if v := os.Getenv("SIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}

	// A deliberately tiny target set: contention is the point.
	if v := os.Getenv("SIM_DOCTOR_IDS"); v != "" {
		cfg.DoctorIDs = splitCSV(v)
	} else {
		cfg.DoctorIDs = []string{"D001", "D002"}
	}

	if v := os.Getenv("SIM_DATES"); v != "" {
		cfg.Dates = splitCSV(v)
	} else {
		today := time.Now().UTC()
		for d := 1; d <= 3; d++ {
			cfg.Dates = append(cfg.Dates, today.AddDate(0, 0, d).Format(time.DateOnly))
		}
	}

	return cfg
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range bytes.Split([]byte(s), []byte(",")) {
		if p := string(bytes.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
