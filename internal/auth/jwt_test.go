package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueAndParse(t *testing.T) {
	m := NewJWTManager("supersecret", time.Hour)

	token, err := m.Issue("usr_1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, jwt.ClaimStrings{audience}, claims.Audience)
}

func TestJWTManager_Expiry(t *testing.T) {
	m := NewJWTManager("supersecret", time.Minute)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	token, err := m.Issue("usr_1", "", RoleAdmin)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(time.Minute + leeway/2) }
	_, err = m.Parse(token)
	require.NoError(t, err, "within leeway")

	m.now = func() time.Time { return start.Add(time.Minute + 2*leeway) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).Issue("usr_1", "", RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func signed(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := NewJWTManager("supersecret", time.Hour)
	valid := jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	noExpiry := valid
	noExpiry.ExpiresAt = nil
	otherAudience := valid
	otherAudience.Audience = jwt.ClaimStrings{"storefront"}
	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"

	tests := map[string]string{
		"none algorithm": signed(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{Role: RoleAdmin, RegisteredClaims: valid}),
		"hs512":          signed(t, jwt.SigningMethodHS512, []byte("supersecret"), Claims{Role: RoleAdmin, RegisteredClaims: valid}),
		"no expiry":      signed(t, jwt.SigningMethodHS256, []byte("supersecret"), Claims{Role: RoleAdmin, RegisteredClaims: noExpiry}),
		"audience":       signed(t, jwt.SigningMethodHS256, []byte("supersecret"), Claims{Role: RoleAdmin, RegisteredClaims: otherAudience}),
		"issuer":         signed(t, jwt.SigningMethodHS256, []byte("supersecret"), Claims{Role: RoleAdmin, RegisteredClaims: otherIssuer}),
		"no role":        signed(t, jwt.SigningMethodHS256, []byte("supersecret"), Claims{RegisteredClaims: valid}),
		"garbage":        "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.Error(t, err)
		})
	}
}

func TestJWTManager_Validator(t *testing.T) {
	m := NewJWTManager("supersecret", time.Hour)
	token, err := m.Issue("usr_9", "ops@example.com", "viewer")
	require.NoError(t, err)

	claims, err := m.Validator()(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_9", claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "viewer", claims.Role)

	_, err = m.Validator()("garbage")
	assert.Error(t, err)
}
