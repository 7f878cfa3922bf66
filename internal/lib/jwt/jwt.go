package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"internship_portal/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind separates access tokens from refresh tokens. A token presented to
// the wrong validation path fails regardless of signature.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Kind     Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into the user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return id, nil
}

type Pair struct {
	Access  string
	Refresh string
}

// Issuer mints and validates signed session tokens. Tokens are stateless:
// there is no server-side store of issued tokens, so revocation before
// natural expiry is not supported. Compromise mitigation relies on the
// short access TTL.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// NewPair mints an access/refresh token pair for an authenticated user.
func (i *Issuer) NewPair(u models.User) (Pair, error) {
	const op = "jwt.NewPair"

	access, err := i.mint(u.ID, u.Username, u.Role(), KindAccess, i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := i.mint(u.ID, u.Username, u.Role(), KindRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse validates signature, expiry and kind. Any failure is reported as
// ErrInvalidToken.
func (i *Issuer) Parse(tokenStr string, kind Kind) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RefreshAccess validates a refresh token and mints a fresh access token
// with a new expiry. The refresh token itself is neither extended nor
// rotated.
func (i *Issuer) RefreshAccess(refreshToken string) (string, error) {
	const op = "jwt.RefreshAccess"

	claims, err := i.Parse(refreshToken, KindRefresh)
	if err != nil {
		return "", err
	}

	id, err := claims.UserID()
	if err != nil {
		return "", err
	}

	access, err := i.mint(id, claims.Username, claims.Role, KindAccess, i.accessTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return access, nil
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) mint(userID int64, username, role string, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Username: username,
		Role:     role,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(i.secret)
}
