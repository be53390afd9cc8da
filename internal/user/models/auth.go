package models

// AuthResult is the in-band outcome of a login or refresh. The refresh token is
// never part of it; it travels out-of-band as a cookie.
type AuthResult struct {
	Authenticated bool
	AccessToken   string
	User          *User
}
