package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/upload"
)

// Envelope is the body of every API response
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	render.Status(r, status)
	render.JSON(w, r, env)
}

func respondOK(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	respond(w, r, status, Envelope{Success: true, Message: message, Data: data})
}

func respondList(w http.ResponseWriter, r *http.Request, data any, count int) {
	respond(w, r, http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respond(w, r, status, Envelope{Success: false, Message: message})
}

func fileTooLargeMessage(maxSize int64) string {
	if maxSize <= 0 {
		maxSize = upload.DefaultMaxSize
	}
	return fmt.Sprintf("File too large. Maximum size is %dMB", maxSize>>20)
}

// writeError maps a service error onto a status code and envelope. label
// names the collection in not-found messages.
func writeError(w http.ResponseWriter, r *http.Request, err error, label string, maxUpload int64) {
	var (
		verr    *sitecontent.ValidationError
		tooBig  *http.MaxBytesError
		message = err.Error()
		status  = http.StatusInternalServerError
	)

	switch {
	case errors.As(err, &verr):
		status, message = http.StatusBadRequest, verr.Message
	case errors.Is(err, sitecontent.ErrRecordNotFound), errors.Is(err, sitecontent.ErrUnknownKind):
		status, message = http.StatusNotFound, label+" not found"
	case errors.Is(err, sitecontent.ErrAdminNotFound):
		status, message = http.StatusNotFound, "Admin not found"
	case errors.Is(err, sitecontent.ErrDuplicateAdmin):
		status, message = http.StatusBadRequest, "Admin with this email or username already exists"
	case errors.Is(err, sitecontent.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, sitecontent.ErrFileTooLarge), errors.As(err, &tooBig):
		status, message = http.StatusBadRequest, fileTooLargeMessage(maxUpload)
	case errors.Is(err, sitecontent.ErrUnsupportedFileType):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondError(w, r, status, message)
}
