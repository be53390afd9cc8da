package jwttoken

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "printsettings/pkg/domain-errors"
)

const testSecret = "test-signing-key-that-is-long-enough"

var testConfig = Config{
	Secret:          testSecret,
	Issuer:          "test-issuer",
	Audience:        "test-audience",
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: 7 * 24 * time.Hour,
}

func newService(t *testing.T, mutate ...func(*Config)) *JWTService {
	t.Helper()
	cfg := testConfig
	for _, m := range mutate {
		m(&cfg)
	}
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)
	return svc
}

func Test_NewJWTService_RejectsShortSecret(t *testing.T) {
	cfg := testConfig
	cfg.Secret = "test-signing-key"
	_, err := NewJWTService(cfg)
	require.Error(t, err)

	cfg = testConfig
	cfg.AccessTokenTTL = 0
	_, err = NewJWTService(cfg)
	require.Error(t, err)
}

func Test_IssueAccess(t *testing.T) {
	svc := newService(t)
	userID := uuid.NewString()

	token, err := svc.IssueAccess(NewClaims(userID, true))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID, claims.Subject)
	assert.False(t, claims.Refresh, "access tokens never carry the refresh marker")
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"test-audience"}, claims.Audience)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func Test_IssueRefresh(t *testing.T) {
	svc := newService(t)
	userID := uuid.NewString()

	token, err := svc.IssueRefresh(NewClaims(userID, false))
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.Refresh)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_WireClaimNames(t *testing.T) {
	svc := newService(t)
	token, err := svc.IssueRefresh(NewClaims("user-1", true))
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	mc := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-1", mc["UserId"])
	assert.Equal(t, true, mc["Refresh"])
	assert.Equal(t, "user-1", mc["sub"])
	assert.NotEmpty(t, mc["jti"])
	assert.Equal(t, "HS256", parsed.Header["alg"])
}

func Test_NewClaims_UniqueTokenIDs(t *testing.T) {
	a := NewClaims("u", false)
	b := NewClaims("u", false)
	assert.NotEqual(t, a.ID, b.ID)
}

func Test_Validate_Rejections(t *testing.T) {
	svc := newService(t)
	valid, err := svc.IssueAccess(NewClaims("user-1", false))
	require.NoError(t, err)

	expired := func() string {
		past := newService(t)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.IssueAccess(NewClaims("user-1", false))
		require.NoError(t, err)
		return token
	}

	signedBy := func(mutate func(*Config)) string {
		other := newService(t, mutate)
		token, err := other.IssueAccess(NewClaims("user-1", false))
		require.NoError(t, err)
		return token
	}

	noneAlg := func() string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"UserId": "user-1",
			"iss":    "test-issuer",
			"aud":    "test-audience",
			"exp":    time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		return token
	}

	tampered := func() string {
		parts := strings.Split(valid, ".")
		parts[2] = strings.Repeat("A", len(parts[2]))
		return strings.Join(parts, ".")
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "invalid-token-string"},
		{name: "empty", token: ""},
		{name: "expired", token: expired()},
		{name: "different secret", token: signedBy(func(c *Config) { c.Secret = strings.Repeat("x", 40) })},
		{name: "different issuer", token: signedBy(func(c *Config) { c.Issuer = "someone-else" })},
		{name: "different audience", token: signedBy(func(c *Config) { c.Audience = "other-clients" })},
		{name: "alg none", token: noneAlg()},
		{name: "tampered signature", token: tampered()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
			require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		})
	}
}

func Test_Validate_ExpiresAfterLifetime(t *testing.T) {
	svc := newService(t)
	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }
	token, err := svc.IssueAccess(NewClaims("user-1", false))
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(14 * time.Minute) }
	_, err = svc.Validate(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ValidateAccessAndRefresh(t *testing.T) {
	svc := newService(t)
	access, err := svc.IssueAccess(NewClaims("user-1", false))
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh(NewClaims("user-1", true))
	require.NoError(t, err)

	_, err = svc.ValidateAccess(access)
	require.NoError(t, err)
	_, err = svc.ValidateAccess(refresh)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefresh(refresh)
	require.NoError(t, err)
	_, err = svc.ValidateRefresh(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_JWTServiceAdapter(t *testing.T) {
	svc := newService(t)
	adapter := NewJWTServiceAdapter(svc)

	claims := NewClaims("user-1", false)
	access, err := svc.IssueAccess(claims)
	require.NoError(t, err)

	got, err := adapter.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "user-1", got.Subject)
	assert.Equal(t, claims.ID, got.JTI)

	refresh, err := svc.IssueRefresh(NewClaims("user-1", true))
	require.NoError(t, err)
	_, err = adapter.ValidateToken(refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}
