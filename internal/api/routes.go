package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/todo-api/internal/api/middleware"
)

// RegisterRoutes mounts the account and task endpoints on r. Everything except
// registration and login requires a bearer token.
func RegisterRoutes(r chi.Router, authHandler *AuthHandler, taskHandler *TaskHandler, authMiddleware *middleware.AuthMiddleware) {
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/logout", authHandler.Logout)
		r.Get("/user", authHandler.CurrentUser)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.Index)
			r.Post("/", taskHandler.Store)
			r.Get("/{"+taskIDParam+"}", taskHandler.Show)
			r.Put("/{"+taskIDParam+"}", taskHandler.Update)
			r.Delete("/{"+taskIDParam+"}", taskHandler.Destroy)
		})
	})
}
