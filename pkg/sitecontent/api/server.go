package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/auth"
)

// ServerConfig wires the HTTP surface together
type ServerConfig struct {
	Service sitecontent.Service
	Auth    *auth.Service
	// Store serves /uploads/*. Nil disables the route.
	Store sitecontent.BlobStore

	Name              string
	CORS              CORSConfig
	AllowRegistration bool
	MaxUploadBytes    int64
	RequestTimeout    time.Duration
	LoginRateLimit    int
}

// Server is the content API
type Server struct {
	cfg ServerConfig
}

// NewServer creates a server from cfg
func NewServer(cfg ServerConfig) *Server {
	if cfg.Name == "" {
		cfg.Name = "Site Content"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &Server{cfg: cfg}
}

// Routes builds the router
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(s.cfg.CORS))
	r.Use(Metrics)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, Envelope{Success: true, Message: s.cfg.Name + " API is running!"})
	})
	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "OK")
	})
	r.Handle("/metrics", promhttp.Handler())

	if s.cfg.Store != nil {
		r.Get("/uploads/*", s.serveUpload)
	}

	requireAdmin := RequireAdmin(s.cfg.Auth.Tokens())
	r.Route("/api", func(r chi.Router) {
		r.Mount("/admin", NewAdminHandler(s.cfg.Auth,
			WithRegistration(s.cfg.AllowRegistration),
			WithLoginRateLimit(s.cfg.LoginRateLimit, time.Minute),
		).Routes())

		for _, schema := range sitecontent.Schemas() {
			h := NewRecordHandler(s.cfg.Service, schema, requireAdmin, s.cfg.MaxUploadBytes)
			r.Mount("/"+schema.Path, h.Routes())
			slog.Debug("Mounted collection", "kind", schema.Kind, "path", "/api/"+schema.Path)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "Route not found")
	})

	return r
}

type contentTyper interface {
	ContentType(objectKey string) (string, bool)
}

// serveUpload streams a stored asset back to the client
func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" || strings.Contains(key, "..") {
		respondError(w, r, http.StatusNotFound, "Route not found")
		return
	}

	rc, err := s.cfg.Store.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, sitecontent.ErrObjectNotFound) {
			respondError(w, r, http.StatusNotFound, "Route not found")
			return
		}
		slog.Error("Failed to read upload", "key", key, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if ct, ok := s.cfg.Store.(contentTyper); ok {
		if v, found := ct.ContentType(key); found {
			contentType = v
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream upload", "key", key, "error", err)
	}
}
