package routes

import (
	"github.com/go-chi/chi/v5"

	"Welog/internal/api/middleware"
	"Welog/internal/web"
)

// RegisterWebRoutes registers every Welog page on the router. Each request
// gets its session loaded first; pages that need a signed-in user are grouped
// behind RequireAuth, which sends visitors to the login page.
func RegisterWebRoutes(r chi.Router, handlers *web.Handlers, sessions *middleware.SessionMiddleware) {
	// Static assets need no session
	r.Handle("/static/*", web.StaticHandler())

	r.Group(func(r chi.Router) {
		r.Use(sessions.LoadSession)

		// Public pages
		r.Get("/", handlers.ListPosts)
		r.Get("/posts", handlers.ListPosts)
		r.Get("/posts/{id}", handlers.ShowPost)
		r.Get("/search", handlers.Search)
		r.Post("/search/recent/clear", handlers.ClearRecentSearches)
		r.Get("/users/{id}", handlers.UserProfile)

		// Account
		r.Get("/login", handlers.LoginPage)
		r.Post("/login", handlers.Login)
		r.Get("/register", handlers.RegisterPage)
		r.Post("/register", handlers.Register)
		r.Post("/logout", handlers.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/posts/new", handlers.NewPost)
			r.Post("/posts/new", handlers.CreatePost)
			r.Get("/posts/{id}/delete", handlers.ConfirmDeletePost)
			r.Post("/posts/{id}/delete", handlers.DeletePost)
			r.Post("/posts/{id}/like", handlers.ToggleLike)

			r.Post("/posts/{id}/comments", handlers.AddComment)
			r.Post("/posts/{id}/comments/{commentID}/replies", handlers.ReplyToComment)
			r.Get("/posts/{id}/comments/{commentID}/delete", handlers.ConfirmDeleteComment)
			r.Post("/posts/{id}/comments/{commentID}/delete", handlers.DeleteComment)

			r.Get("/profile", handlers.MyProfile)
			r.Post("/profile", handlers.UpdateProfile)

			r.Get("/notifications", handlers.Notifications)
			r.Post("/notifications/read-all", handlers.MarkAllNotificationsRead)
			r.Post("/notifications/{id}/read", handlers.MarkNotificationRead)
		})
	})
}
