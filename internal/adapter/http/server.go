// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"fitlog/internal/app"
)

// Services bundles the application services the server routes to.
type Services struct {
	Weight   *app.WeightService
	Notes    *app.NoteService
	Summary  *app.SummaryService
	Transfer *app.TransferService
	Charts   *app.ChartsService
	Auth     *app.AuthService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	weight   *app.WeightService
	notes    *app.NoteService
	summary  *app.SummaryService
	transfer *app.TransferService
	charts   *app.ChartsService
	authSvc  *app.AuthService

	oidcConfig  OIDCConfig
	corsOrigins []string
	webDir      string
	log         *zap.Logger
	now         func() time.Time

	disableAuth   bool
	defaultUserID int64
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		weight:        svc.Weight,
		notes:         svc.Notes,
		summary:       svc.Summary,
		transfer:      svc.Transfer,
		charts:        svc.Charts,
		authSvc:       svc.Auth,
		webDir:        webDir,
		log:           log,
		now:           time.Now,
		defaultUserID: 1,
	}
}

// WithoutAuth disables authentication; every request acts as userID.
func (s *Server) WithoutAuth(userID int64) *Server {
	s.disableAuth = true
	if userID > 0 {
		s.defaultUserID = userID
	}
	return s
}

// WithOIDC enables the SSO endpoints.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithCORS allows cross-origin requests from origins.
func (s *Server) WithCORS(origins []string) *Server {
	s.corsOrigins = origins
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(withNoCache)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		api.Get("/config", s.handleConfig)

		api.Post("/auth/login", s.handleLogin)
		api.Post("/auth/logout", s.handleLogout)
		api.Post("/auth/setup", s.handleSetupUser)
		api.Get("/auth/sso/login", s.handleSSOLogin)
		api.Get("/auth/sso/callback", s.handleSSOCallback)

		api.Group(func(p chi.Router) {
			p.Use(s.authMiddleware)

			p.Get("/weight", s.handleWeightHistory)
			p.Post("/weight", s.handleWeightSave)
			p.Get("/weight/new", s.handleWeightDefaults)
			p.Get("/weight/imc", s.handleIMCPreview)
			p.Get("/weight/fat-goal", s.handleFatGoal)
			p.Put("/weight/{id}", s.handleWeightSave)
			p.Delete("/weight/{id}", s.handleWeightDelete)

			p.Get("/notes", s.handleNotesList)
			p.Post("/notes", s.handleNoteAdd)
			p.Put("/notes/{id}", s.handleNoteUpdate)
			p.Delete("/notes/{id}", s.handleNoteDelete)
			p.Delete("/notes/{id}/media/{index}", s.handleNoteMediaDelete)
			p.Post("/notes/{id}/links", s.handleNoteLinkAdd)
			p.Patch("/notes/{id}/links/{linkID}", s.handleNoteLinkRename)
			p.Delete("/notes/{id}/links/{linkID}", s.handleNoteLinkDelete)

			p.Get("/logs/{book}", s.handleLogsList)
			p.Post("/logs/{book}", s.handleLogRecord)

			p.Get("/summary/sessions", s.handleSessions)
			p.Get("/summary/sessions/{date}", s.handleSession)
			p.Delete("/summary/sessions/{date}", s.handleSessionDelete)
			p.Delete("/summary/logs/{id}", s.handleSummaryLogDelete)
			p.Delete("/summary/logs/{id}/media/{index}", s.handleSummaryMediaDelete)

			p.Get("/export", s.handleExport)
			p.Post("/import", s.handleImport)

			p.Get("/charts/series", s.handleChartSeries)
			p.Get("/charts/weight.html", s.handleChartPage)
		})
	})

	r.Handle("/*", spaFromDisk(s.webDir))
	return r
}

func (s *Server) today() string {
	return localDayString(s.now())
}
