// Package mocks provides centralized mock implementations for testing.
//
// Store mocks keep their data in memory and behave like the PostgreSQL stores
// for the common paths, so service tests can exercise real flows. Every
// method can be overridden through its function field:
//
//	users := mocks.NewMockUserStore()
//	users.GetByEmailFn = func(ctx context.Context, email string) (*domain.User, error) {
//	    return nil, errors.New("connection reset")
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
