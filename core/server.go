package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionCookieName = "authToken"

type Server struct {
	authService *AuthService
	config      *Config
}

func NewServer(authService *AuthService, config *Config) *Server {
	return &Server{
		authService: authService,
		config:      config,
	}
}

// Router mounts the HTTP surface. The error-kind to status mapping lives
// here and nowhere deeper.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Post("/auth/login", s.HandleLogin)
	r.Get("/auth/callback", s.HandleCallback)
	r.Get("/auth/verify", s.HandleVerify)
	r.Get("/health", s.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		Code     string `json:"code"`
	}

	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.authService.HandleAuthorization(r.Context(), req.Provider, req.Code)
	if err != nil {
		s.respondLoginError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"token": token,
	})
}

// HandleCallback is the browser-facing half of HandleLogin: the provider
// redirects here with state (the provider key) and code, and the session
// token travels onwards as an HttpOnly cookie.
func (s *Server) HandleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	if state == "" || code == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "state and code are required")
		return
	}

	token, err := s.authService.HandleAuthorization(r.Context(), state, code)
	if err != nil {
		s.respondLoginError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   60 * 60 * 24,
	})

	http.Redirect(w, r, s.config.PostLoginRedirect, http.StatusFound)
}

func (s *Server) HandleVerify(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		respondError(w, http.StatusUnauthorized, "invalid_token", "Missing authorization header")
		return
	}

	if err := s.authService.VerifySession(authHeader); err != nil {
		if errors.Is(err, ErrTokenExpired) {
			respondError(w, http.StatusUnauthorized, "token_expired", "Session token expired")
			return
		}
		respondError(w, http.StatusUnauthorized, "invalid_token", "Session token invalid")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Helper functions

func (s *Server) respondLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProviderNotFound):
		respondError(w, http.StatusBadRequest, "invalid_provider", "Unsupported provider")
	case errors.Is(err, ErrUsernameUndefined):
		respondError(w, http.StatusUnprocessableEntity, "profile_incomplete", "Profile has no usable username")
	case errors.Is(err, ErrClientCallFailed), errors.Is(err, ErrEmptyResponseBody):
		respondError(w, http.StatusBadGateway, "provider_error", "Provider call failed")
	case errors.Is(err, ErrFailedToSaveData):
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to save user record")
	default:
		respondError(w, http.StatusUnauthorized, "login_failed", "Authentication failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	respondJSON(w, statusCode, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
