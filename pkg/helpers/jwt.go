package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// signingMethod is the only algorithm Parse accepts.
var signingMethod = jwt.SigningMethodHS256

// SessionTTL is the lifetime of every session token.
const SessionTTL = 48 * time.Hour

// JWTManager issues and verifies stateless session tokens signed with one secret.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of m that reads time from now.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	c := *m
	c.now = now
	return &c
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Generate signs a token for email that expires TTL after issuance.
func (m *JWTManager) Generate(email string) (string, time.Time, error) {
	iat := m.now()
	exp := iat.Add(m.ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(iat),
		},
	}
	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	return s, exp, err
}

// Parse verifies signature and expiry. It returns ErrTokenExpired once the
// clock reaches the expiry instant and ErrTokenMalformed for anything else.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !tkn.Valid || claims.Email == "" {
		return nil, ErrTokenMalformed
	}
	// Lifetime is [iat, exp).
	if !m.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
