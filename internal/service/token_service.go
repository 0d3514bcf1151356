package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/tienda-api/internal/domain"
)

// DefaultTokenTTL is the access token lifetime when none is configured
const DefaultTokenTTL = 24 * time.Hour

// TokenService signs and verifies access tokens
type TokenService interface {
	// Sign issues a token for user and returns its expiry
	Sign(user *domain.PublicUser) (string, time.Time, error)
	// Verify checks signature, issuer and expiry and returns the claims
	Verify(token string) (*domain.Claims, error)
	// TTL returns the token lifetime
	TTL() time.Duration
}

// TokenServiceConfig holds configuration for TokenService
type TokenServiceConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
	// Now overrides the clock, for tests
	Now func() time.Time
}

type tokenClaims struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// jwtTokenService implements TokenService with HS256
type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(config *TokenServiceConfig) (TokenService, error) {
	if config == nil || config.Secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &jwtTokenService{
		secret: []byte(config.Secret),
		ttl:    ttl,
		issuer: config.Issuer,
		now:    now,
	}, nil
}

// Sign issues a token for user
func (s *jwtTokenService) Sign(user *domain.PublicUser) (string, time.Time, error) {
	now := s.now()
	expiresAt := jwt.NewNumericDate(now.Add(s.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt.Time, nil
}

// Verify checks signature, issuer and expiry
func (s *jwtTokenService) Verify(tokenString string) (*domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !token.Valid || claims.UserID <= 0 || claims.Subject != strconv.Itoa(claims.UserID) {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Claims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TTL returns the token lifetime
func (s *jwtTokenService) TTL() time.Duration {
	return s.ttl
}
