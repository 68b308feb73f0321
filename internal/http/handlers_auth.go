package http

import (
	"log/slog"
	"net/http"
)

type loginView struct {
	Authenticated bool
	Email         string
	From          string
	Error         string
}

// defaultEmail pre-fills the login form with the primary partner's address.
const defaultEmail = "rafael@delivery.com"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	// Already authenticated visitors never see the form.
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if _, err := s.sessions.Token(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/despesas", http.StatusFound)
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", loginView{
			Email: defaultEmail,
			From:  r.URL.Query().Get("from"),
		})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", loginView{Email: defaultEmail, Error: "Formulário inválido"})
		return
	}

	email := formValue(r, "email")
	password := r.FormValue("password")
	from := formValue(r, "from")

	view := loginView{Email: email, From: from}
	if email == "" || password == "" {
		view.Error = "Informe email e senha"
		s.render(w, r, "login.html", view)
		return
	}

	token, err := s.svc.Login(r.Context(), email, password)
	if err != nil {
		slog.WarnContext(r.Context(), "Login failed", "email", email, "error", err)
		view.Error = err.Error()
		s.render(w, r, "login.html", view)
		return
	}

	id, err := s.sessions.Login(r.Context(), token)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to persist session", "error", err)
		view.Error = "Não foi possível iniciar a sessão. Tente novamente."
		s.render(w, r, "login.html", view)
		return
	}

	s.setSessionCookie(w, id)
	http.Redirect(w, r, safeReturnPath(from), http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.Logout(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "Failed to remove session", "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
