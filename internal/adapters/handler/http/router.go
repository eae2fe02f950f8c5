package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/livepoll/api/internal/adapters/handler/http/docs"
)

type Handlers struct {
	Poll      *PollHandler
	Vote      *VoteHandler
	Stream    *StreamHandler
	Dashboard *DashboardHandler
	User      *UserHandler
	Auth      *AuthHandler
}

func NewHandler(h Handlers, authMiddleware *AuthMiddleware) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/google/callback", h.Auth.GoogleCallback)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Poll.ListPolls)
			r.With(authMiddleware.RequireAuth).Post("/", h.Poll.CreatePoll)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Poll.GetPoll)
				r.With(authMiddleware.RequireAuth).Put("/", h.Poll.UpdatePoll)
				r.With(authMiddleware.RequireAuth).Delete("/", h.Poll.DeletePoll)
				r.With(authMiddleware.RequireAuth).Post("/toggle", h.Poll.TogglePoll)

				r.With(authMiddleware.OptionalAuth).Post("/votes", h.Vote.CastVote)
				r.With(authMiddleware.OptionalAuth).Get("/my-vote", h.Vote.GetMyVote)
				r.Get("/results", h.Vote.GetResults)
				r.Get("/live", h.Stream.PollLive)
			})
		})

		r.With(authMiddleware.RequireAuth).Get("/my-polls", h.Poll.ListMyPolls)
		r.With(authMiddleware.RequireAuth).Get("/dashboard", h.Dashboard.GetDashboard)
		r.With(authMiddleware.RequireAuth).Get("/me", h.User.GetMe)
		r.With(authMiddleware.RequireAuth).Get("/notifications/stream", h.Stream.Notifications)
	})

	return r
}
