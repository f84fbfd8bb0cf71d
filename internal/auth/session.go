package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/invoicehub/backend/internal/user"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims carries the fixed set of session fields. The subject is the user id
// as a decimal string.
type Claims struct {
	jwt.RegisteredClaims
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Surnames string  `json:"surnames"`
	Phone    *string `json:"phone,omitempty"`
	Country  *string `json:"country,omitempty"`
}

// Session is the per-request view of a token. Its display fields are a
// snapshot taken at issuance: profile edits after login are not reflected
// until the user re-authenticates.
type Session struct {
	UserID   int64
	Email    string
	Name     string
	Surnames string
	Phone    *string
	Country  *string
	IssuedAt time.Time
}

// Manager issues and parses session tokens. maxAge is the absolute lifetime
// of each issued token, refreshAfter the sliding rotation interval.
type Manager struct {
	secret       []byte
	maxAge       time.Duration
	refreshAfter time.Duration
}

func NewManager(secret string, maxAge, refreshAfter time.Duration) *Manager {
	return &Manager{
		secret:       []byte(secret),
		maxAge:       maxAge,
		refreshAfter: refreshAfter,
	}
}

// Issue signs a token for a verified user.
func (m *Manager) Issue(u *user.User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.maxAge)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email:    u.Email,
		Name:     u.Name,
		Surnames: u.Surnames,
		Phone:    u.Phone,
		Country:  u.Country,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, expires, nil
}

// Parse validates a token and materializes the session without touching the
// database.
func (m *Manager) Parse(tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}

	s := &Session{
		UserID:   userID,
		Email:    claims.Email,
		Name:     claims.Name,
		Surnames: claims.Surnames,
		Phone:    claims.Phone,
		Country:  claims.Country,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}

	return s, nil
}

// RefreshDue reports whether the token backing the session is old enough to
// rotate.
func (m *Manager) RefreshDue(s *Session) bool {
	return time.Since(s.IssuedAt) >= m.refreshAfter
}

// Reissue signs a fresh token from session state, extending the expiry
// without re-reading the user record.
func (m *Manager) Reissue(s *Session) (string, time.Time, error) {
	return m.Issue(&user.User{
		ID:       s.UserID,
		Email:    s.Email,
		Name:     s.Name,
		Surnames: s.Surnames,
		Phone:    s.Phone,
		Country:  s.Country,
	})
}
