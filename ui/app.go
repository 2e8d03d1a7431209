package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"epireport/app"
	"epireport/internal/config"
	"epireport/internal/errors"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// App is the web surface: an upload form, the results page it posts
// to, and a health probe. Sessions live for one request; nothing is
// stored between analyses.
type App struct {
	router    *chi.Mux
	analyzer  *app.Analyzer
	templates *template.Template
	log       *logrus.Logger
	cfg       config.ServerConfig
	analyses  *semaphore.Weighted
}

// NewApp wires the router, templates, and the semaphore that bounds
// concurrent analyses.
func NewApp(cfg *config.Config, analyzer *app.Analyzer, logger *logrus.Logger) (*App, error) {
	if logger == nil {
		logger = logrus.New()
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		analyzer:  analyzer,
		templates: templates,
		log:       logger,
		cfg:       cfg.Server,
		analyses:  semaphore.NewWeighted(int64(cfg.Server.MaxConcurrentAnalyses)),
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", http.StripPrefix("/", staticFS))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/analyze", a.handleAnalyze)
	a.router.Post("/report.txt", a.handleReportDownload)
	a.router.Post("/area.geojson", a.handleGeoJSONDownload)
	a.router.Get("/healthz", a.handleHealthz)
}

// Router exposes the handler tree, mainly for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start blocks serving HTTP on the configured port.
func (a *App) Start() error {
	addr := ":" + a.cfg.Port
	a.log.WithField("addr", addr).Info("starting epireport web server")
	return http.ListenAndServe(addr, a.router)
}

// renderTemplate executes into a buffer first so a template error
// becomes a clean 500 instead of a half-written page.
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		appErr := errors.RenderFailed(templateName, err)
		a.log.WithError(appErr).WithField("code", errors.GetCode(appErr)).Error("template render failed")
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		a.log.WithError(err).Warn("error writing template response")
	}
}
