package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is fixed; sessions are not refreshable.
const SessionTTL = time.Hour

var (
	ErrUnauthorized = errors.New("missing session token")
	ErrForbidden    = errors.New("invalid session token")
)

type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// WithClock swaps the time source. Tests use it to move past expiry.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// IssueSession signs the identity and role of u into a bearer token.
func (m *Manager) IssueSession(u user.User) (string, error) {
	now := m.now().UTC()

	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Authenticate resolves a raw token to its claims. An empty token is
// ErrUnauthorized; anything that does not verify is ErrForbidden.
func (m *Manager) Authenticate(tokenStr string) (*Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForbidden, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrForbidden
	}

	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
// A header without a token part is ErrUnauthorized; a token under any
// scheme other than Bearer is ErrForbidden.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", ErrUnauthorized
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrForbidden
	}
	return token, nil
}

// RequireRole is a strict equality check; there is no role hierarchy.
func RequireRole(claims *Claims, role string) error {
	if claims == nil {
		return ErrUnauthorized
	}
	if claims.Role != role {
		return ErrForbidden
	}
	return nil
}
