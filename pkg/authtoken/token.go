package authtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Issued is a freshly signed portal session token.
type Issued struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

type Signer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewSigner(secret, issuer string, ttl time.Duration) Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return Signer{Secret: []byte(secret), Issuer: issuer, TTL: ttl}
}

// Issue signs an HS256 token whose jti is sessionID.
func (s Signer) Issue(sessionID, userID, email, role string, now time.Time) (*Issued, error) {
	if len(s.Secret) == 0 {
		return nil, errors.New("missing session secret")
	}
	exp := now.Add(s.TTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: email,
		Role:  role,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Issued{Token: tok, SessionID: sessionID, ExpiresAt: exp}, nil
}

// Verify validates signature, algorithm, issuer and time claims.
func (s Signer) Verify(tokenString string, now time.Time) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	if len(s.Secret) == 0 {
		return nil, errors.New("missing session secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}

	claims := &Claims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("missing session id")
	}
	return claims, nil
}
