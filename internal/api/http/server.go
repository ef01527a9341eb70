package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/chartsmith/chartsmith/internal/config"
	"github.com/chartsmith/chartsmith/internal/observability"
	"github.com/chartsmith/chartsmith/internal/render"
	"github.com/chartsmith/chartsmith/internal/storage"
	"github.com/chartsmith/chartsmith/internal/store"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// Options configures the API handlers.
type Options struct {
	// PublicURL is the origin written into embed snippets
	PublicURL string

	// AllowedOrigins lists CORS origins; empty allows all
	AllowedOrigins []string

	// BodyLimit bounds request bodies, e.g. "10M"
	BodyLimit string

	// StrictReferences rejects configs naming fields the dataset lacks
	StrictReferences bool

	// Render holds render defaults
	Render config.RenderConfig
}

// OptionsFromConfig derives handler options from the service configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PublicURL:        cfg.HTTP.PublicURL,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		BodyLimit:        cfg.HTTP.BodyLimit,
		StrictReferences: cfg.Validation.StrictReferences,
		Render:           cfg.Render,
	}
}

// Server holds the dependencies shared by every handler.
type Server struct {
	store   store.Store
	objects storage.ObjectStorage
	stats   *observability.RenderStats
	log     logrus.FieldLogger
	opts    Options
}

// NewServer creates the API. objects may be nil, which disables exports.
func NewServer(st store.Store, objects storage.ObjectStorage, stats *observability.RenderStats,
	log logrus.FieldLogger, opts Options) *Server {
	if stats == nil {
		stats = observability.NewRenderStats(0)
	}
	return &Server{store: st, objects: objects, stats: stats, log: log, opts: opts}
}

// Handler builds the echo instance with middleware and routes registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(s.log)

	e.Use(RequestID())
	e.Use(RequestLogger(s.log))
	e.Use(Recovery())
	e.Use(CORS(s.opts.AllowedOrigins))
	if s.opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(s.opts.BodyLimit))
	}

	e.GET("/health", s.handleHealth)
	e.GET("/embed/:id", s.handleEmbedPage)

	v1 := e.Group("/v1")

	charts := v1.Group("/charts")
	charts.GET("", s.handleListCharts)
	charts.POST("", s.handleCreateChart)
	charts.GET("/:id", s.handleGetChart)
	charts.PUT("/:id", s.handleUpdateChart)
	charts.DELETE("/:id", s.handleDeleteChart)
	charts.GET("/:id/plan", s.handlePlan)
	charts.GET("/:id/svg", s.handleSVG)
	charts.GET("/:id/embed-code", s.handleEmbedCode)
	charts.POST("/:id/exports", s.handleExport)

	v1.POST("/datasets/validate", s.handleValidateDataset)
	v1.POST("/datasets/import", s.handleImportDataset)

	v1.GET("/presets", s.handleListPresets)
	v1.GET("/presets/:id", s.handleGetPreset)
	v1.GET("/schemas/:name", s.handleSchema)
	v1.GET("/stats", s.handleStats)

	return e
}

// renderOptions resolves the theme for one render: the query parameter,
// then the chart's own theme, then the configured default.
func (s *Server) renderOptions(c echo.Context, cfg types.ChartConfig) render.Options {
	theme := types.Theme(c.QueryParam("theme"))
	if theme == "" && cfg.Theme == "" {
		theme = types.Theme(s.opts.Render.Theme)
	}
	return render.Options{
		Theme:  theme,
		Width:  s.opts.Render.Width,
		Height: s.opts.Render.Height,
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.Ping(c.Request().Context()); err != nil {
		s.log.WithError(err).Warn("health check failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
