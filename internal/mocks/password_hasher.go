package mocks

import (
	"errors"

	"github.com/phrazzld/todo-api/internal/service/auth"
)

// ErrPasswordMismatch is returned by MockPasswordHasher.Compare on a mismatch.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordHasher implements auth.PasswordHasher without bcrypt's cost.
// By default Hash prefixes the password with "hashed:" and Compare checks
// that relation.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

const hashPrefix = "hashed:"

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return hashPrefix + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword != hashPrefix+password {
		return ErrPasswordMismatch
	}
	return nil
}
