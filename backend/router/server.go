package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"retrospective/backend/handlers"
	"retrospective/backend/ws"
)

// New builds the full HTTP surface. The hub may be nil in tests; the CRUD
// semantics never depend on it.
func New(hub *ws.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.StripSlashes)
	r.Use(recoveryMiddleware)
	r.Use(requestLogger)
	r.Use(metricsMiddleware)

	r.Post("/register", handlers.RegisterHandler)
	r.Post("/login", handlers.LoginHandler)
	r.Post("/logout", handlers.LogoutHandler)
	r.Get("/session", handlers.SessionHandler)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", handlers.ListPostsHandler)
		r.Post("/", handlers.CreatePostHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetPostHandler)
			r.Put("/", handlers.UpdatePostHandler)
			r.Delete("/", handlers.DeletePostHandler)
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.Get("/", handlers.ListCommentsHandler)
		r.Post("/", handlers.CreateCommentHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetCommentHandler)
			r.Put("/", handlers.UpdateCommentHandler)
			r.Delete("/", handlers.DeleteCommentHandler)
		})
	})

	r.Route("/likes", func(r chi.Router) {
		r.Get("/", handlers.ListLikesHandler)
		r.Post("/", handlers.CreateLikeHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetLikeHandler)
			r.Delete("/", handlers.DeleteLikeHandler)
		})
	})

	r.Route("/followers", func(r chi.Router) {
		r.Get("/", handlers.ListFollowersHandler)
		r.Post("/", handlers.CreateFollowerHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetFollowerHandler)
			r.Delete("/", handlers.DeleteFollowerHandler)
		})
	})

	r.Route("/chats", func(r chi.Router) {
		r.Get("/", handlers.ListChatsHandler)
		r.Post("/", handlers.CreateChatHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetChatHandler)
			r.Put("/", handlers.UpdateChatHandler)
			r.Delete("/", handlers.DeleteChatHandler)

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", handlers.ListMessagesHandler)
				r.Post("/", handlers.CreateMessageHandler)
				r.Route("/{messageID}", func(r chi.Router) {
					r.Get("/", handlers.GetMessageHandler)
					r.Put("/", handlers.UpdateMessageHandler)
					r.Delete("/", handlers.DeleteMessageHandler)
				})
			})
		})
	})

	r.Get("/feedback", handlers.ListFeedbackHandler)
	r.Post("/feedback", handlers.CreateFeedbackHandler)

	r.Get("/reports", handlers.ListReportsHandler)
	r.Post("/reports", handlers.CreateReportHandler)

	r.Get("/user-autocomplete", handlers.UserAutocompleteHandler)
	r.Get("/mentions", handlers.UserAutocompleteHandler)

	r.Get("/profiles/{id}", handlers.GetProfileHandler)

	if hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleWebSocket(hub, w, r)
		})
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("panic recovered")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": "Internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
