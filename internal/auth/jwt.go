package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/middleware"
)

const RoleAdmin = "admin"

const (
	issuer   = "fashion-backend"
	audience = "fashion-admin"
	leeway   = 30 * time.Second
)

var errNoRole = errors.New("token carries no role")

// Claims are the claims of an admin access token. The user id is the
// standard subject claim.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 admin tokens.
type JWTManager struct {
	key    []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	m := &JWTManager{key: []byte(secret), ttl: ttl, now: time.Now}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

// Issue signs a token for subject valid for the manager's ttl.
func (m *JWTManager) Issue(subject, email, role string) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token for %s: %w", subject, err)
	}
	return token, nil
}

// Parse verifies signature, issuer, audience and expiry.
func (m *JWTManager) Parse(raw string) (*Claims, error) {
	var claims Claims
	if _, err := m.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	}); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Role == "" {
		return nil, errNoRole
	}
	return &claims, nil
}

// Validator adapts the manager to middleware.Auth.
func (m *JWTManager) Validator() middleware.TokenValidator {
	return func(raw string) (*middleware.Claims, error) {
		c, err := m.Parse(raw)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: c.Subject, Email: c.Email, Role: c.Role}, nil
	}
}
