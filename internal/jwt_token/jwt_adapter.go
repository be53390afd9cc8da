package jwttoken

import (
	authmw "printsettings/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims projects validated claims onto what the auth middleware
// attaches to a request.
func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		JTI:     claims.ID,
	}
}

// AccessValidator is the subset of JWTService the adapter needs.
type AccessValidator interface {
	ValidateAccess(tokenString string) (*Claims, error)
}

// JWTServiceAdapter lets the auth middleware validate access tokens. Refresh
// tokens are rejected.
type JWTServiceAdapter struct {
	service AccessValidator
}

func NewJWTServiceAdapter(service AccessValidator) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateAccess(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
