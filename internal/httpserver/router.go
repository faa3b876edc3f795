package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pdlsagar677/Social-Media/docs"
	"github.com/pdlsagar677/Social-Media/internal/domain"
	"github.com/pdlsagar677/Social-Media/internal/presence"
	"github.com/pdlsagar677/Social-Media/internal/security"
	"github.com/pdlsagar677/Social-Media/internal/service"
)

// Deps are the collaborators the router wires into handlers.
// Social is optional; its routes are only mounted when it is set.
type Deps struct {
	AppName        string
	CORSOrigins    []string
	AuthCookieName string

	Tokens   *security.TokenService
	Chat     *service.ChatService
	Social   *service.SocialService
	Registry *presence.Registry
	Realtime http.Handler
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": d.AppName,
			"version": "1.0.0",
			"docs":    "/docs/index.html",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "healthy",
			"online": d.Registry.Len(),
		})
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// websocket upgrades must not run under a request timeout
	if d.Realtime != nil {
		r.Method(http.MethodGet, "/ws", d.Realtime)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(AuthMiddleware(d.Tokens, d.AuthCookieName))

		r.Route("/message", func(r chi.Router) {
			r.Post("/send/{id}", handleSendMessage(d.Chat))
			r.Get("/all/{id}", handleGetMessages(d.Chat))
			r.Get("/online", handleOnlineUsers(d.Registry))
		})

		if d.Social != nil {
			r.Get("/post/{id}/like", handleLikePost(d.Social))
			r.Get("/post/{id}/dislike", handleDislikePost(d.Social))
			r.Post("/user/followorunfollow/{id}", handleFollowOrUnfollow(d.Social))
		}
	})

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "User not authenticated"
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorResponse{Success: false, Message: msg})
}
