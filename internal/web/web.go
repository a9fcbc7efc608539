// Package web serves finboard's HTML pages.
package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/finboard/internal/account"
	"github.com/starford/finboard/internal/analysis"
	"github.com/starford/finboard/internal/apiclient"
	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/ecos"
	"github.com/starford/finboard/internal/localstore"
	"github.com/starford/finboard/internal/market"
	"github.com/starford/finboard/internal/news"
	"github.com/starford/finboard/internal/session"
	"github.com/starford/finboard/internal/sse"
)

// Services are the upstream-backed features the pages render.
type Services struct {
	Market   *market.Service
	Ecos     *ecos.Service
	News     *news.Service
	Analysis *analysis.Service
	Account  *account.Service
	Cache    *localstore.DB
}

// Server holds page handlers.
type Server struct {
	svc      Services
	tmpl     *Templates
	broker   *sse.Broker
	views    *session.Registry[*ecos.View]
	loginURL string
	now      func() time.Time
	logger   *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLoginURL sets where /login/start sends the browser.
func WithLoginURL(u string) ServerOption {
	return func(s *Server) { s.loginURL = u }
}

// WithClock overrides the clock used for default dates.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a Server.
func NewServer(svc Services, tmpl *Templates, broker *sse.Broker, views *session.Registry[*ecos.View], opts ...ServerOption) *Server {
	s := &Server{
		svc:    svc,
		tmpl:   tmpl,
		broker: broker,
		views:  views,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEcosViews creates the per-browser viewer registry. Every state change
// of a browser's viewer is pushed to that browser's event stream.
func NewEcosViews(svc *ecos.Service, broker *sse.Broker, size int, ttl time.Duration) *session.Registry[*ecos.View] {
	return session.NewRegistry(size, ttl, func(client string) *ecos.View {
		return ecos.NewView(svc, func(st ecos.State) {
			broker.Publish(sse.Event{Topic: client, Type: sse.TypeEcosState, Data: newEcosEvent(st)})
		})
	})
}

// Router returns the page routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/ecos/events", s.EcosEvents)

	r.Group(func(r chi.Router) {
		r.Use(s.withBrowser)

		r.Get("/", s.Home)

		r.Get("/bond", s.Bonds)
		r.Get("/bond/{id}", s.BondDetail)
		r.Post("/bond/{id}/save", s.SaveBond)
		r.Get("/fund", s.Funds)
		r.Get("/etf", s.ETFs)

		r.Get("/recommendations/bond", s.BondRecommendation)
		r.Get("/recommendations/fund", s.FundRecommendation)
		r.Get("/recommendations/etf", s.ETFRecommendation)

		r.Get("/news-search", s.News)
		r.Get("/ecos", s.Ecos)

		r.Get("/flow", s.Flow)
		r.Get("/flow/{step:income|expense}", s.FlowStep)
		r.Post("/flow/{step:income|expense}", s.FlowSubmit)
		r.Get("/flow/result", s.FlowResult)
		r.Get("/financial_guide", s.FinancialGuide)

		r.Get("/login", s.Login)
		r.Get("/login/start", s.LoginStart)
		r.Post("/logout", s.Logout)
		r.Post("/account/departure", s.Departure)

		r.Get(apiclient.RouteUnauthorized, s.Unauthorized)
		r.Get(apiclient.RouteServerError, s.ServerError)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusNotFound, "notfound", &page{Title: "페이지를 찾을 수 없습니다"})
	})

	return r
}

type clientKey struct{}

func clientFrom(ctx context.Context) string {
	id, _ := ctx.Value(clientKey{}).(string)
	return id
}

// withBrowser identifies the browser, carries it through the request and,
// once the handler is done, turns a navigation requested by the upstream
// client into a 303 redirect. Page output is buffered so a navigation can
// still replace it.
func (s *Server) withBrowser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := session.EnsureClient(w, r)
		b := apiclient.NewBrowser(r.URL.Path, r.Cookies())
		ctx := context.WithValue(r.Context(), clientKey{}, client)
		ctx = apiclient.WithBrowser(ctx, b)

		bw := &bufferedWriter{header: w.Header(), status: http.StatusOK}
		next.ServeHTTP(bw, r.WithContext(ctx))

		for _, c := range b.PendingCookies() {
			out := *c
			out.Domain = ""
			if out.Path == "" {
				out.Path = "/"
			}
			http.SetCookie(w, &out)
		}

		if target, ok := b.Redirect(); ok {
			w.Header().Del("Content-Type")
			w.Header().Del("Location")
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		w.WriteHeader(bw.status)
		_, _ = bw.buf.WriteTo(w)
	})
}

type bufferedWriter struct {
	header      http.Header
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	return w.buf.Write(p)
}

// navigated reports whether the upstream client already decided where the
// browser goes next.
func navigated(r *http.Request) bool {
	if b := apiclient.BrowserFrom(r.Context()); b != nil {
		_, ok := b.Redirect()
		return ok
	}
	return false
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p *page) {
	p.Path = r.URL.Path
	if err := s.tmpl.Render(w, status, name, p); err != nil {
		s.logger.Error("render failed",
			slog.String("page", name),
			slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// fail renders p in its error state, unless the error already sent the
// browser to an error route.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, name string, p *page, err error, retry string) {
	if apperr.Redirected(err) && navigated(r) {
		return
	}
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return
	default:
		s.logger.Warn("view failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	p.View = failed(err, retry)
	s.render(w, r, status, name, p)
}

func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
