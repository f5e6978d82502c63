package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued admin token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// devSecret signs tokens in development when no secret is configured.
const devSecret = "secret"

const tokenIssuer = "webfusion"

// Principal is the admin identity carried by a verified token.
type Principal struct {
	AdminID string
	Email   string
}

// TokenOptions configures a TokenService.
type TokenOptions struct {
	Secret     string
	Production bool
	TTL        time.Duration
	Now        func() time.Time
}

// TokenService issues and verifies HS256 bearer tokens. Tokens are
// stateless; there is no revocation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds a TokenService. In production an empty secret is
// kept empty so that Issue fails instead of signing with a known key.
func NewTokenService(opts TokenOptions) *TokenService {
	secret := opts.Secret
	if secret == "" && !opts.Production {
		secret = devSecret
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: now}
}

// Configured reports whether the service has a signing secret.
func (s *TokenService) Configured() bool {
	return len(s.secret) > 0
}

// TTL returns the validity window of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the given admin.
func (s *TokenService) Issue(adminID, email string) (string, error) {
	if !s.Configured() {
		return "", ErrConfiguration
	}
	now := s.now()
	claims := tokenClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenStr and returns the admin
// identity it carries.
func (s *TokenService) Verify(tokenStr string) (*Principal, error) {
	if !s.Configured() {
		return nil, ErrConfiguration
	}
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AdminID == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{
		AdminID: claims.AdminID,
		Email:   claims.Email,
	}, nil
}

type tokenClaims struct {
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}
