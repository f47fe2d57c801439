package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/service"
)

// AuthHandler handles account requests.
type AuthHandler struct {
	users        service.UserService
	exposeErrors bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. exposeErrors adds redacted internal
// error text to 500 responses.
func NewAuthHandler(users service.UserService, exposeErrors bool, logger *slog.Logger) *AuthHandler {
	if users == nil {
		panic("user service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:        users,
		exposeErrors: exposeErrors,
		logger:       logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	shared.RespondSuccess(w, r, http.StatusCreated, "User registered successfully", UserResponse{User: user})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	shared.RespondSuccess(w, r, http.StatusOK, "Login successful", LoginResponse{
		User:      result.User,
		Token:     result.Token.Token,
		TokenType: TokenType,
		ExpiresAt: result.Token.ExpiresAt,
	})
}

// Logout handles POST /logout. Every token of the user is revoked, not only
// the one presented.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	if err := h.users.Logout(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user logged out")
	shared.RespondSuccess(w, r, http.StatusOK, "Logged out successfully", nil)
}

// CurrentUser handles GET /user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	shared.RespondSuccess(w, r, http.StatusOK, "User data retrieved", UserResponse{User: user})
}
