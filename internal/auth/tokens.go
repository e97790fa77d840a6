package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mazurov/bloglist-server/internal/models"
)

var (
	// ErrTokenRequired is returned when a protected operation is attempted
	// without a bearer token
	ErrTokenRequired = errors.New("jwt must be provided")

	// ErrInvalidToken is returned for malformed tokens and tokens that
	// verify but carry no usable identity
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidSignature is returned when a token fails signature verification
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrTokenExpired is returned when a token carries a past expiry claim
	ErrTokenExpired = errors.New("token expired")
)

// tokenClaims is the payload embedded in issued tokens
type tokenClaims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed bearer tokens against a process-wide secret
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token service. A zero ttl issues tokens without an
// expiry claim.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue produces a signed token embedding the user's identity
func (t *Tokens) Issue(user *models.User) (string, error) {
	claims := tokenClaims{
		Username: user.Username,
		UserID:   user.ID,
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(t.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a raw bearer token and returns the embedded user id and
// username. Failure modes map onto the error taxonomy above.
func (t *Tokens) Verify(raw string) (userID, username string, err error) {
	if raw == "" {
		return "", "", ErrTokenRequired
	}

	var claims tokenClaims
	_, err = jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", "", ErrInvalidSignature
		default:
			return "", "", ErrInvalidToken
		}
	}

	// A verified token without an id claim carries no identity
	if claims.UserID == "" {
		return "", "", ErrInvalidToken
	}

	return claims.UserID, claims.Username, nil
}
