package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/invoicehub/backend/internal/config"
	"github.com/invoicehub/backend/internal/db"
	"github.com/invoicehub/backend/internal/user"
)

type seedUser struct {
	email    string
	password string
	name     string
	surnames string
	phone    string
	country  string
}

var seedUsers = []seedUser{
	{"alice@example.com", "P@ssAlice1", "Alice", "Anders", "+34600000001", "ES"},
	{"bob@example.com", "P@ssBob1", "Bob", "Baker", "+34600000002", "ES"},
	{"carol@example.com", "P@ssCarol1", "Carol", "Costa Ruiz", "+34600000003", "PT"},
	{"dave@example.com", "P@ssDave1", "Dave", "Dorn", "", ""},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.Migrate(cfg.Postgres.URL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	ctx := context.Background()

	pool, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := seed(ctx, pool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}

	log.Info().Msg("Seed completed")
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	ids := make([]int64, 0, len(seedUsers))

	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", su.email, err)
		}

		var id int64
		err = pool.QueryRow(ctx, `
			INSERT INTO users (email, password, name, surnames, phone, country)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
			ON CONFLICT (email) DO UPDATE SET updated_at = now()
			RETURNING id
		`, su.email, string(hash), su.name, su.surnames, su.phone, su.country).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", su.email, err)
		}
		ids = append(ids, id)
		log.Info().Int64("user_id", id).Str("email", su.email).Msg("Seeded user")
	}

	// Alice knows Bob and Carol; Bob knows Carol. Dave has no contacts.
	links := [][2]int64{{ids[0], ids[1]}, {ids[0], ids[2]}, {ids[1], ids[2]}}
	for _, link := range links {
		_, err := pool.Exec(ctx, `
			INSERT INTO contacts (user_id, contact_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, link[0], link[1])
		if err != nil {
			return fmt.Errorf("failed to link contacts %v: %w", link, err)
		}
	}

	now := time.Now().UTC()
	invoices := []struct {
		number   string
		issuer   int64
		debtor   int64
		amount   float64
		tax      float64
		status   user.InvoiceStatus
		issued   time.Time
		due      time.Time
	}{
		{"INV-2026-0001", ids[0], ids[1], 1200.00, 252.00, user.InvoiceStatusPaid, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0)},
		{"INV-2026-0002", ids[0], ids[2], 450.50, 94.61, user.InvoiceStatusPending, now.AddDate(0, 0, -10), now.AddDate(0, 0, 20)},
		{"INV-2026-0003", ids[1], ids[0], 89.99, 18.90, user.InvoiceStatusOverdue, now.AddDate(0, -3, 0), now.AddDate(0, -2, 0)},
		{"INV-2026-0004", ids[2], ids[3], 5000.00, 1050.00, user.InvoiceStatusCancelled, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0)},
	}

	invoiceIDs := make(map[string]int64, len(invoices))
	for _, inv := range invoices {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO invoices (invoice_number, issuer_id, debtor_id, amount, tax, status, issue_date, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (invoice_number) DO UPDATE SET updated_at = now()
			RETURNING id
		`, inv.number, inv.issuer, inv.debtor, inv.amount, inv.tax, inv.status, inv.issued, inv.due).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert invoice %s: %w", inv.number, err)
		}
		invoiceIDs[inv.number] = id
	}

	payments := []struct {
		invoice string
		amount  float64
		method  user.PaymentMethod
	}{
		{"INV-2026-0001", 1452.00, user.PaymentMethodVisa},
		{"INV-2026-0002", 200.00, user.PaymentMethodPaypal},
		{"INV-2026-0003", 50.00, user.PaymentMethodMastercard},
		{"INV-2026-0003", 20.00, user.PaymentMethodOther},
	}

	for _, p := range payments {
		// Name-based UUID keeps reruns idempotent via the unique reference.
		reference := uuid.NewV5(uuid.NamespaceOID, fmt.Sprintf("%s/%s/%.2f", p.invoice, p.method, p.amount))

		_, err := pool.Exec(ctx, `
			INSERT INTO payments (invoice_id, amount, method, reference)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING
		`, invoiceIDs[p.invoice], p.amount, p.method, reference.String())
		if err != nil {
			return fmt.Errorf("failed to insert payment for %s: %w", p.invoice, err)
		}
	}

	return nil
}
