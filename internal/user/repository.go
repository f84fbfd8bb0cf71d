package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, int64, error)
	Update(ctx context.Context, id int64, profile UpdateProfile) (*User, error)
	ListContacts(ctx context.Context, userID int64) ([]User, error)
	GetContact(ctx context.Context, userID, contactID int64) (*User, error)
	ListInvoices(ctx context.Context, userID int64) ([]Invoice, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const userColumns = "id, email, password, name, surnames, phone, country, image, created_at, updated_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.Name,
		&u.Surnames,
		&u.Phone,
		&u.Country,
		&u.Image,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %d: %w", id, err)
	}

	return u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by email: %w", err)
	}

	return u, nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count users: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM users ORDER BY id LIMIT $1 OFFSET $2", userColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query users: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, profile UpdateProfile) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET email = $1, name = $2, surnames = $3, phone = $4, country = $5, image = $6, updated_at = $7
		WHERE id = $8
		RETURNING %s
	`, userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query,
		profile.Email,
		profile.Name,
		profile.Surnames,
		profile.Phone,
		profile.Country,
		profile.Image,
		time.Now().UTC(),
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("repository: failed to update user %d: %w", id, err)
	}

	return u, nil
}

func (r *postgresRepository) ListContacts(ctx context.Context, userID int64) ([]User, error) {
	// The relation is stored directed but read bidirectionally.
	query := fmt.Sprintf(`
		SELECT %s FROM users u
		WHERE u.id IN (
			SELECT c.contact_id FROM contacts c WHERE c.user_id = $1
			UNION
			SELECT c.user_id FROM contacts c WHERE c.contact_id = $1
		)
		ORDER BY u.id
	`, prefixedUserColumns("u"))

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query contacts for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *postgresRepository) GetContact(ctx context.Context, userID, contactID int64) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users u
		WHERE u.id = $2
		  AND EXISTS (
			SELECT 1 FROM contacts c
			WHERE (c.user_id = $1 AND c.contact_id = $2)
			   OR (c.user_id = $2 AND c.contact_id = $1)
		  )
	`, prefixedUserColumns("u"))

	u, err := scanUser(r.db.QueryRow(ctx, query, userID, contactID))
	if err != nil {
		// A missing user and a user outside the caller's contacts are the
		// same ErrNotFound: callers must not be able to tell them apart.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select contact %d of user %d: %w", contactID, userID, err)
	}

	return u, nil
}

func (r *postgresRepository) ListInvoices(ctx context.Context, userID int64) ([]Invoice, error) {
	query := `
		SELECT id, invoice_number, issuer_id, debtor_id, amount, tax, status, issue_date, due_date, created_at, updated_at
		FROM invoices
		WHERE issuer_id = $1 OR debtor_id = $1
		ORDER BY issue_date DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query invoices for user %d: %w", userID, err)
	}
	defer rows.Close()

	invoices := make([]Invoice, 0)
	for rows.Next() {
		var inv Invoice
		err := rows.Scan(
			&inv.ID,
			&inv.InvoiceNumber,
			&inv.IssuerID,
			&inv.DebtorID,
			&inv.Amount,
			&inv.Tax,
			&inv.Status,
			&inv.IssueDate,
			&inv.DueDate,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan invoice for user %d: %w", userID, err)
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating invoices for user %d: %w", userID, err)
	}

	return invoices, nil
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating users: %w", err)
	}

	return users, nil
}

func prefixedUserColumns(alias string) string {
	return fmt.Sprintf("%[1]s.id, %[1]s.email, %[1]s.password, %[1]s.name, %[1]s.surnames, %[1]s.phone, %[1]s.country, %[1]s.image, %[1]s.created_at, %[1]s.updated_at", alias)
}
