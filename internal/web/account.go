package web

import (
	"log/slog"
	"net/http"

	"github.com/starford/finboard/internal/analysis"
	"github.com/starford/finboard/internal/apiclient"
)

// Login handles GET /login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	p := &page{
		Title:    "로그인",
		LoggedIn: s.svc.Account.LoggedIn(r.Context()),
		Notice:   r.URL.Query().Get("error"),
		View:     View{Status: StatusReady},
	}
	s.render(w, r, http.StatusOK, "login", p)
}

// LoginStart handles GET /login/start.
func (s *Server) LoginStart(w http.ResponseWriter, r *http.Request) {
	if s.loginURL == "" {
		seeOther(w, r, "/login")
		return
	}
	seeOther(w, r, s.loginURL)
}

// Logout handles POST /logout. The browser is logged out locally whatever
// the upstream answers.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.svc.Account.Logout(ctx)
	s.forget(r)
	seeOther(w, r, "/")
}

// Departure handles POST /account/departure.
func (s *Server) Departure(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Account.Depart(r.Context()); err != nil {
		if navigated(r) {
			return
		}
		p := &page{Title: "로그인", LoggedIn: true, Notice: message(err), View: View{Status: StatusReady}}
		s.render(w, r, http.StatusOK, "login", p)
		return
	}
	s.forget(r)
	seeOther(w, r, "/")
}

// forget drops what finboard keeps for the browser's login.
func (s *Server) forget(r *http.Request) {
	ctx := r.Context()
	if b := apiclient.BrowserFrom(ctx); b != nil {
		b.SetCookie(&http.Cookie{Name: analysis.SessionCookie, Path: "/", MaxAge: -1})
	}
	client := clientFrom(ctx)
	s.views.Drop(client)
	if s.svc.Cache == nil {
		return
	}
	if err := s.svc.Cache.Forget(ctx, client); err != nil {
		s.logger.Warn("failed to forget browser cache",
			slog.String("client", client),
			slog.String("error", err.Error()))
	}
}

// Unauthorized handles GET /error-401. The page sends the browser to /login
// after a short countdown.
func (s *Server) Unauthorized(w http.ResponseWriter, r *http.Request) {
	p := &page{Title: "로그인이 필요합니다", Data: 5}
	s.render(w, r, http.StatusUnauthorized, "error401", p)
}

// ServerError handles GET /error-500.
func (s *Server) ServerError(w http.ResponseWriter, r *http.Request) {
	p := &page{Title: "서버 오류"}
	s.render(w, r, http.StatusInternalServerError, "error500", p)
}
