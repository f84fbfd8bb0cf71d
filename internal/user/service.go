package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, int64, error)
	UpdateUser(ctx context.Context, id int64, profile UpdateProfile) (*User, error)
	ListContacts(ctx context.Context, userID int64) ([]User, error)
	GetContact(ctx context.Context, userID, contactID int64) (*User, error)
	ListInvoices(ctx context.Context, userID int64) ([]Invoice, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Authenticate verifies credentials and returns the matching user. The email
// match is exact and case-sensitive. Password comparison is bcrypt's
// constant-time compare.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("service: failed to get user by email")
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to get user by id")
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}

	return u, nil
}

func (s *service) ListUsers(ctx context.Context, limit, offset int) ([]User, int64, error) {
	users, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list users")
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (s *service) UpdateUser(ctx context.Context, id int64, profile UpdateProfile) (*User, error) {
	u, err := s.repo.Update(ctx, id, profile)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to update user")
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	return u, nil
}

func (s *service) ListContacts(ctx context.Context, userID int64) ([]User, error) {
	contacts, err := s.repo.ListContacts(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("service: failed to list contacts")
		return nil, fmt.Errorf("failed to list contacts of user %d: %w", userID, err)
	}

	return contacts, nil
}

func (s *service) GetContact(ctx context.Context, userID, contactID int64) (*User, error) {
	contact, err := s.repo.GetContact(ctx, userID, contactID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", userID).Int64("contact_id", contactID).Msg("service: failed to get contact")
		return nil, fmt.Errorf("failed to get contact %d of user %d: %w", contactID, userID, err)
	}

	return contact, nil
}

func (s *service) ListInvoices(ctx context.Context, userID int64) ([]Invoice, error) {
	invoices, err := s.repo.ListInvoices(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("service: failed to list invoices")
		return nil, fmt.Errorf("failed to list invoices of user %d: %w", userID, err)
	}

	return invoices, nil
}
