// Package http is the routing shell and view layer: it maps paths to
// screens, gates protected screens behind the session, and renders the
// embedded templates with data fetched from the backend.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gastos/internal/backend"
	"gastos/internal/core"
	"gastos/internal/session"
	appweb "gastos/web"
)

// Session cookie carrying the durable session ID.
const sessionCookieName = "gastos_session"

type contextKey string

const (
	tokenContextKey     contextKey = "bearer_token"
	sessionIDContextKey contextKey = "session_id"
	requestIDContextKey contextKey = "request_id"
)

type Server struct {
	http.Server
	templates    *template.Template
	svc          backend.Service
	sessions     *session.Store
	secureCookie bool
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc backend.Service, sessions *session.Store, secureCookie bool) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:          svc,
		sessions:     sessions,
		secureCookie: secureCookie,
		rateLimiter:  newRateLimiter(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(template.FuncMap{
		"brl":    core.FormatBRL,
		"dateBR": core.FormatDateBR,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.withRequestLog(s.handleLogin))
	mux.HandleFunc("/sair", s.withRequestLog(s.handleLogout))
	mux.HandleFunc("/despesas", s.withRequestLog(s.requireSession(s.handleExpenses)))
	mux.HandleFunc("/fechamento", s.withRequestLog(s.requireSession(s.handleCloseWeek)))
	mux.HandleFunc("/relatorios", s.withRequestLog(s.requireSession(s.handleSettlements)))
	mux.HandleFunc("/relatorios/baixar", s.withRequestLog(s.requireSession(s.handleDownload)))
	mux.HandleFunc("/relatorios/", s.withRequestLog(s.requireSession(s.handleSettlementDetail)))

	// Catch-all: everything else lands on the expense list (the guard then
	// bounces unauthenticated visitors to /login).
	mux.HandleFunc("/", s.withRequestLog(s.handleIndex))

	return s
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLog adds a request ID, security headers, rate limiting on
// POSTs, and start/completion logging.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// requireSession gates a view behind authentication. Unauthenticated
// requests are sent to /login carrying the originally requested path so
// login can return there.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			redirectToLogin(w, r)
			return
		}
		token, err := s.sessions.Token(r.Context(), cookie.Value)
		if err != nil {
			if err != session.ErrNotFound {
				slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
			}
			s.clearSessionCookie(w)
			redirectToLogin(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), tokenContextKey, token)
		ctx = context.WithValue(ctx, sessionIDContextKey, cookie.Value)
		next(w, r.WithContext(ctx))
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Path
	if r.URL.RawQuery != "" {
		from += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?from="+urlQueryEscape(from), http.StatusFound)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// bearerToken returns the token the guard stored in the request context.
func bearerToken(r *http.Request) string {
	if token, ok := r.Context().Value(tokenContextKey).(string); ok {
		return token
	}
	return ""
}

func sessionID(r *http.Request) string {
	if id, ok := r.Context().Value(sessionIDContextKey).(string); ok {
		return id
	}
	return ""
}

// render executes a page template; template failures become a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/despesas", http.StatusFound)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
