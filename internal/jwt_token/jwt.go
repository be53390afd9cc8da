package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "printsettings/pkg/domain-errors"
)

// MinSecretLength is the shortest HMAC secret accepted.
const MinSecretLength = 32

// ErrInvalidToken is returned for every validation failure. Callers cannot tell
// a bad signature from an expired or mistargeted token.
var ErrInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "invalid token")

// Claims is the claim set carried by access and refresh tokens.
type Claims struct {
	UserID  string `json:"UserId"`
	Refresh bool   `json:"Refresh,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims builds a claim set for userID with a fresh token id. Issuance adds
// issuer, audience and timestamps.
func NewClaims(userID string, refresh bool) Claims {
	return Claims{
		UserID:  userID,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
			ID:      uuid.NewString(),
		},
	}
}

type Config struct {
	Secret          string
	Issuer          string
	Audience        string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTService(cfg Config) (*JWTService, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, errors.New("jwt token lifetimes must be positive")
	}
	return &JWTService{
		signingKey: []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}, nil
}

func (s *JWTService) AccessTokenTTL() time.Duration { return s.accessTTL }
func (s *JWTService) RefreshTokenTTL() time.Duration { return s.refreshTTL }

// IssueAccess signs claims as an access token. The refresh marker is cleared.
func (s *JWTService) IssueAccess(claims Claims) (string, error) {
	claims.Refresh = false
	return s.sign(claims, s.accessTTL)
}

// IssueRefresh signs claims as a refresh token. The refresh marker is forced.
func (s *JWTService) IssueRefresh(claims Claims) (string, error) {
	claims.Refresh = true
	return s.sign(claims, s.refreshTTL)
}

func (s *JWTService) sign(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.Issuer = s.issuer
	claims.Audience = jwt.ClaimStrings{s.audience}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm, issuer, audience and expiry and returns
// the embedded claims. Any failure is ErrInvalidToken.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccess is Validate that also rejects refresh tokens.
func (s *JWTService) ValidateAccess(tokenString string) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Refresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefresh is Validate that only accepts refresh tokens.
func (s *JWTService) ValidateRefresh(tokenString string) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
