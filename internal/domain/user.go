package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Length limits for user fields.
const (
	UserNameMaxLength = 255
	EmailMaxLength    = 255
	PasswordMinLength = 6
	// PasswordMaxLength is bcrypt's input limit.
	PasswordMaxLength = 72
)

// User represents a registered account. Every task belongs to exactly one user.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, only set while registering
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given name, email and plaintext password.
// It generates a new UUID for the user ID and sets the creation/update timestamps.
// Returns a *ValidationError if any field is invalid.
//
// The caller is responsible for hashing the password before storing the user.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// A user needs either a plaintext password (during registration) or a hash.
func (u *User) Validate() error {
	verr := &ValidationError{}

	if u.ID == uuid.Nil {
		verr.Add("id", "The id field is required.")
	}

	switch {
	case u.Name == "":
		verr.Add("name", "The name field is required.")
	case utf8.RuneCountInString(u.Name) > UserNameMaxLength:
		verr.Add("name", "The name field must not be greater than 255 characters.")
	}

	switch {
	case u.Email == "":
		verr.Add("email", "The email field is required.")
	case !IsValidEmail(u.Email):
		verr.Add("email", "The email field must be a valid email address.")
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			verr.Merge(err)
		}
	} else if u.HashedPassword == "" {
		verr.Add("password", "The password field is required.")
	}

	return verr.OrNil()
}

// ValidatePassword checks plaintext password length bounds.
func ValidatePassword(password string) *ValidationError {
	switch {
	case password == "":
		return NewValidationError("password", "The password field is required.")
	case len(password) < PasswordMinLength:
		return NewValidationError("password", "The password field must be at least 6 characters.")
	case len(password) > PasswordMaxLength:
		return NewValidationError("password", "The password field must not be greater than 72 characters.")
	}
	return nil
}

// IsValidEmail reports whether email is within the length limit and
// structurally valid.
func IsValidEmail(email string) bool {
	return len(email) <= EmailMaxLength && validateEmailFormat(email)
}

// validateEmailFormat performs a structural check: a non-empty local part,
// a single @, and a dotted domain without leading or trailing dots.
func validateEmailFormat(email string) bool {
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.Count(email, "@") != 1 {
		return false
	}

	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	if dot <= 0 || strings.HasSuffix(domainPart, ".") {
		return false
	}

	return !strings.Contains(domainPart, "..")
}
