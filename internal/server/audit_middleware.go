package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abishek1718/package-locker/internal/auth"
)

// auditRecorder captures the status code and body written by a handler
// so the audit entry can carry the response.
type auditRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newAuditRecorder(w http.ResponseWriter) *auditRecorder {
	return &auditRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (a *auditRecorder) WriteHeader(status int) {
	a.status = status
	a.ResponseWriter.WriteHeader(status)
}

func (a *auditRecorder) Write(b []byte) (int, error) {
	a.body.Write(b)
	return a.ResponseWriter.Write(b)
}

// auditLogMiddleware records every mutating request; reads and the
// metrics/health endpoints stay out of the audit trail.
func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auditable(r) {
			next.ServeHTTP(w, r)
			return
		}

		entry := AuditLogEntry{
			Timestamp: time.Now().UTC(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   handlerName(r.URL.Path, r.Method),
			PackageID: packageIDFromPath(r.URL.Path),
		}

		if token := bearerToken(r); token != "" {
			if session, err := auth.ParseToken(token, s.cfg.JWTSecret); err == nil {
				entry.UserID = session.UserID
			}
		}

		// Multipart bodies are too large to keep; login and user-creation
		// bodies hold plaintext passwords.
		skipRequestBody := strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") ||
			r.URL.Path == "/auth/login" || r.URL.Path == "/users"
		if !skipRequestBody && r.Body != nil {
			requestBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)
		}

		rec := newAuditRecorder(w)
		next.ServeHTTP(rec, r)

		entry.StatusCode = rec.status
		entry.Response = rec.body.String()

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func auditable(r *http.Request) bool {
	if r.Method == http.MethodGet {
		return false
	}
	return r.URL.Path != "/metrics" && r.URL.Path != "/health"
}

func packageIDFromPath(path string) string {
	const prefix = "/packages/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func handlerName(path, method string) string {
	switch {
	case strings.HasPrefix(path, "/auth/login"):
		return "handleLogin"
	case strings.HasPrefix(path, "/packages/"):
		if method == http.MethodPatch {
			return "handleUpdatePackage"
		}
		return "handleGetPackage"
	case strings.HasPrefix(path, "/packages"):
		return "handleCreatePackage"
	case strings.HasPrefix(path, "/residents/upload"):
		return "handleImportResidents"
	case strings.HasPrefix(path, "/recipients/upload"):
		return "handleImportRecipients"
	case strings.HasPrefix(path, "/residents"):
		return "handleCreateResident"
	case strings.HasPrefix(path, "/users"):
		switch method {
		case http.MethodPost:
			return "handleCreateUser"
		case http.MethodDelete:
			return "handleDeleteUser"
		}
		return "handleListUsers"
	case strings.HasPrefix(path, "/upload"):
		return "handleUpload"
	}
	return "unknown"
}
