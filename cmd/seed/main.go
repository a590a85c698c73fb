package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-scheduling/internal/db"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDoctors(context.Background(), pool, 25); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedAvailability(context.Background(), pool); err != nil {
		log.Fatalf("seed availability: %v", err)
	}
	if err := seedFees(context.Background(), pool); err != nil {
		log.Fatalf("seed fees: %v", err)
	}
	if err := seedDiscounts(context.Background(), pool, 8); err != nil {
		log.Fatalf("seed discounts: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d doctors", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := gofakeit.Regex(`D[0-9]{3}`)
		name := "Dr. " + gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			ON CONFLICT (id) DO NOTHING
		`, id, name, spec)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}

// seedAvailability writes one row per doctor-day for the next 60 days.
// Roughly one day in five is a closed day with zero usable capacity.
func seedAvailability(ctx context.Context, pool *pgxpool.Pool) error {
	log.Println("seeding availability")

	rows, err := pool.Query(ctx, `SELECT id FROM doctors`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var doctorIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		doctorIDs = append(doctorIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, doctorID := range doctorIDs {
		for d := 0; d < 60; d++ {
			day := today.AddDate(0, 0, d)
			open := gofakeit.Number(0, 4) > 0
			units := gofakeit.Number(4, 12)
			notes := ""
			if !open {
				units = 0
				notes = "Not a clinic day"
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO availability (doctor_id, date, is_available, daily_capacity_units, notes)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (doctor_id, date) DO NOTHING
			`, doctorID, day, open, units, notes)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("availability seeded for %d doctors", len(doctorIDs))
	return nil
}

func seedFees(ctx context.Context, pool *pgxpool.Pool) error {
	log.Println("seeding doctor fees")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, spec := range specialties {
		fee := float64(gofakeit.Number(80, 400))

		_, err := tx.Exec(ctx, `
			INSERT INTO doctor_fees (specialty, base_fee)
			VALUES ($1, $2)
			ON CONFLICT (specialty) DO UPDATE SET base_fee = EXCLUDED.base_fee
		`, spec, fee)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("doctor fees seeded")
	return nil
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d insurance discounts", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 1; i <= count; i++ {
		id := gofakeit.Regex(`INS[0-9]{2}`)
		name := gofakeit.Company() + " Insurance"
		pct := float64(gofakeit.Number(0, 70))

		_, err := tx.Exec(ctx, `
			INSERT INTO insurance_discounts (insurance_id, company_name, discount_percent)
			VALUES ($1, $2, $3)
			ON CONFLICT (insurance_id) DO NOTHING
		`, id, name, pct)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("insurance discounts seeded")
	return nil
}
