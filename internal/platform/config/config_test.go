package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, []string{"addUser", "login", "refreshToken"}, cfg.Auth.PublicOperations)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("PUBLIC_OPERATIONS", "addUser,login")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("USER_STORE", "mongo")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, []string{"addUser", "login"}, cfg.Auth.PublicOperations)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, StoreMongo, cfg.Store.Backend)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestFromEnvParseError(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"), err.Error())
}

func TestValidate(t *testing.T) {
	valid := func() Server {
		return Server{
			Auth: AuthConfig{
				JWTSecret:       testSecret,
				AccessTokenTTL:  time.Minute,
				RefreshTokenTTL: time.Hour,
			},
			Store: StoreConfig{Backend: StoreMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Server)
		wantErr string
	}{
		{name: "valid", mutate: func(*Server) {}},
		{name: "short secret", mutate: func(s *Server) { s.Auth.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "zero access ttl", mutate: func(s *Server) { s.Auth.AccessTokenTTL = 0 }, wantErr: "JWT_ACCESS_TOKEN_TTL"},
		{name: "negative refresh ttl", mutate: func(s *Server) { s.Auth.RefreshTokenTTL = -time.Second }, wantErr: "JWT_REFRESH_TOKEN_TTL"},
		{name: "unknown backend", mutate: func(s *Server) { s.Store.Backend = "sqlite" }, wantErr: "unknown USER_STORE"},
		{name: "postgres without dsn", mutate: func(s *Server) { s.Store.Backend = StorePostgres }, wantErr: "POSTGRES_DSN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
