package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/auth"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const (
	requestIDHeader = "X-Request-ID"
	adminKeyHeader  = "X-Admin-Key"

	apiCSP   = "default-src 'none'; frame-ancestors 'none'"
	embedCSP = "default-src 'none'; script-src 'self' 'unsafe-inline' https://go-echarts.github.io; style-src 'unsafe-inline'; img-src 'self' data:"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request by the logging
// middleware.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Errorf("panic %s %s req=%s: %v\n%s", r.Method, r.URL.Path, RequestID(r.Context()), rec, debug.Stack())
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		if strings.HasPrefix(r.URL.Path, "/embed/") {
			// embeds are framed by third party sites
			w.Header().Set("Content-Security-Policy", embedCSP)
		} else {
			w.Header().Set("Content-Security-Policy", apiCSP)
			w.Header().Set("X-Frame-Options", "DENY")
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware opens every route to the configured client origin and
// answers preflight requests itself.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origin := strings.TrimSpace(s.cfg.CORSOrigin)
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Expose-Headers", "Content-Disposition, ETag, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match, "+adminKeyHeader)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		s.logger.Printf("REQ %s %s req=%s", r.Method, r.URL.Path, RequestID(r.Context()))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if utils.ValidateSessionID(id) != nil {
			id = newRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("RESP %s %s req=%s status=%d dur=%s bytes=%d", r.Method, r.URL.Path, id, rec.status, time.Since(start), rec.size)
	})
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// requireAdminKey checks X-Admin-Key against the configured argon2 hash.
func (s *Server) requireAdminKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin disabled"})
			return
		}
		ok, err := auth.VerifyKey(r.Header.Get(adminKeyHeader), s.cfg.Admin.Pepper, s.adminKey)
		if err != nil || !ok {
			s.logger.Warnf("ADMIN fail %s %s req=%s", r.Method, r.URL.Path, RequestID(r.Context()))
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
