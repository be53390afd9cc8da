package models

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/crypto/bcrypt"

	dErrors "printsettings/pkg/domain-errors"
)

// SearchKind selects which key Find looks a user up by.
type SearchKind int

const (
	ByID SearchKind = iota
	ByEmail
)

func (k SearchKind) String() string {
	switch k {
	case ByID:
		return "id"
	case ByEmail:
		return "email"
	default:
		return "unknown"
	}
}

// emailPattern accepts local@domain where the domain has at least two labels.
var emailPattern = regexp.MustCompile("(?i)^[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$")

// User is the durable identity record. ID is assigned by the store on insert and
// is empty until then. PasswordDigest is a bcrypt hash; an empty digest marks a
// read projection that must never be used as login input.
type User struct {
	ID             string
	Email          string
	PasswordDigest string
}

// NewUser builds a user from a plaintext password, digesting it immediately.
func NewUser(email, password string) (*User, error) {
	digest, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{Email: email, PasswordDigest: digest}, nil
}

// HasPassword reports whether the record carries a digest.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordDigest != ""
}

// compareDigest is swapped in tests to count comparisons.
var compareDigest = bcrypt.CompareHashAndPassword

// dummyDigest is compared against when there is no real digest, so a miss
// costs the same bcrypt work as a wrong password.
var dummyDigest = sync.OnceValue(func() []byte {
	digest, err := bcrypt.GenerateFromPassword([]byte("printsettings-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy digest: %v", err))
	}
	return digest
})

// VerifyPassword compares a plaintext password against the stored digest.
// A user without a digest still pays for one comparison and never verifies.
func (u *User) VerifyPassword(password string) bool {
	if !u.HasPassword() {
		RejectPassword(password)
		return false
	}
	return compareDigest([]byte(u.PasswordDigest), []byte(password)) == nil
}

// RejectPassword performs the same bcrypt work as VerifyPassword against a
// fixed digest. Call it on lookup misses.
func RejectPassword(password string) {
	_ = compareDigest(dummyDigest(), []byte(password))
}

// Public returns a copy stripped of the password digest, safe to hand to a
// serialization boundary.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, Email: u.Email}
}

// HashPassword creates a salted bcrypt digest of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "Password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "Password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// ValidEmail reports whether email is non-empty and matches the accepted grammar.
func ValidEmail(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}

// Candidate is the client-supplied input for account creation. It deliberately
// has no ID field.
type Candidate struct {
	Email    string
	Password string
}

// Validate checks the candidate shape before any store access.
func (c Candidate) Validate() error {
	if !ValidEmail(c.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "Invalid email address")
	}
	if c.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "Password is required")
	}
	return nil
}
