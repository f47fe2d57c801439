package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/service/auth"
)

// UnauthenticatedMessage is the response message for a missing or unusable
// bearer token.
const UnauthenticatedMessage = "Unauthenticated."

// AuthMiddleware authenticates bearer tokens.
type AuthMiddleware struct {
	tokens auth.TokenIssuer
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(tokens auth.TokenIssuer) *AuthMiddleware {
	if tokens == nil {
		panic("token issuer cannot be nil")
	}
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate rejects requests without a valid, unrevoked bearer token and
// puts the authenticated user's ID in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		claims, err := m.tokens.Authenticate(r.Context(), token)
		if err != nil {
			if auth.IsAuthenticationError(err) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, UnauthenticatedMessage, nil, err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Something went wrong", nil, err)
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		log := logger.FromContext(ctx).With(slog.String("user_id", claims.UserID.String()))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
