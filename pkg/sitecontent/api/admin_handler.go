package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/auth"
)

// AdminHandler serves registration, login and profile routes
type AdminHandler struct {
	auth              *auth.Service
	allowRegistration bool
	loginLimit        int
	loginWindow       time.Duration
}

// AdminOption configures an AdminHandler
type AdminOption func(*AdminHandler)

// WithRegistration enables or disables POST /register
func WithRegistration(allow bool) AdminOption {
	return func(h *AdminHandler) {
		h.allowRegistration = allow
	}
}

// WithLoginRateLimit throttles login and register per client IP. A zero
// limit disables throttling.
func WithLoginRateLimit(requests int, window time.Duration) AdminOption {
	return func(h *AdminHandler) {
		h.loginLimit = requests
		h.loginWindow = window
	}
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(authService *auth.Service, opts ...AdminOption) *AdminHandler {
	h := &AdminHandler{
		auth:              authService,
		allowRegistration: true,
		loginLimit:        10,
		loginWindow:       time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the admin routes
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if h.loginLimit > 0 {
			r.Use(RateLimitByIP(h.loginLimit, h.loginWindow))
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.auth.Tokens()))
		r.Get("/profile", h.Profile)
	})

	return r
}

// SessionResponse is the body returned on register and login
type SessionResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Token    string    `json:"token"`
}

func newSessionResponse(s *auth.Session) SessionResponse {
	return SessionResponse{
		ID:       s.Admin.ID,
		Username: s.Admin.Username,
		Email:    s.Admin.Email,
		Role:     s.Admin.Role,
		Token:    s.Token,
	}
}

// Register creates an admin account
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.allowRegistration {
		respondError(w, r, http.StatusForbidden, "Registration is disabled")
		return
	}

	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respondOK(w, r, http.StatusCreated, "Admin registered successfully", newSessionResponse(session))
}

// Login exchanges credentials for a token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Please provide email and password")
		return
	}

	session, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respondOK(w, r, http.StatusOK, "Login successful", newSessionResponse(session))
}

// Profile returns the signed-in admin
func (h *AdminHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.AdminIDFromContext(r.Context())

	admin, err := h.auth.Profile(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respondOK(w, r, http.StatusOK, "", admin)
}

func (h *AdminHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && !sitecontent.IsValidation(err) {
		slog.Debug("Admin request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, r, err, "Admin", 0)
}
