// Package service contains the application use cases: account registration
// and sessions (UserService) and task management (TaskService).
//
// Services receive their stores, the token issuer, the list cache and the
// event emitter through constructor injection and never depend on a concrete
// database. Every task operation takes the authenticated user's ID explicitly;
// there is no ambient current user.
//
// Error handling:
//   - invalid input is reported as *domain.ValidationError
//   - expected conditions are sentinel errors (ErrInvalidCredentials, ErrTaskNotFound)
//   - anything else is wrapped in *ServiceError and treated as an internal failure
package service
