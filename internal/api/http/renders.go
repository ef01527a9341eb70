package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/internal/render"
	"github.com/chartsmith/chartsmith/internal/storage"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// Render surfaces recorded in the render statistics.
const (
	SurfacePlan   = "plan"
	SurfaceSVG    = "svg"
	SurfaceEmbed  = "embed"
	SurfaceExport = "export"
)

// EmbedCodeResponse is the body of GET /v1/charts/:id/embed-code.
type EmbedCodeResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Code   string `json:"code"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ExportResponse is the body of POST /v1/charts/:id/exports.
type ExportResponse struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	ETag        string `json:"etag"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Placeholder bool   `json:"placeholder"`
}

// renderChart renders a stored chart and records the outcome.
func (s *Server) renderChart(c echo.Context, chart *types.SavedChart, surface string) render.Output {
	start := time.Now()
	out := render.Render(chart.Config, chart.Dataset, s.renderOptions(c, chart.Config))
	s.stats.RecordRender(string(chart.Config.Type), surface, time.Since(start), out.Err)
	if out.Failed() {
		s.log.WithField("chart_id", chart.ID).WithError(out.Err).Warn("chart rendered as placeholder")
	}
	return out
}

func (s *Server) handlePlan(c echo.Context) error {
	chart, err := s.loadChart(c)
	if err != nil {
		return err
	}
	start := time.Now()
	plan, err := render.Build(chart.Config, chart.Dataset, s.renderOptions(c, chart.Config))
	s.stats.RecordRender(string(chart.Config.Type), SurfacePlan, time.Since(start), err)
	if err != nil {
		return cserrors.NewRenderError(cserrors.CodeRenderFailed, "failed to plan chart", err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) handleSVG(c echo.Context) error {
	chart, err := s.loadChart(c)
	if err != nil {
		return err
	}
	out := s.renderChart(c, chart, SurfaceSVG)

	etag := `"` + storage.ETag(out.SVG) + `"`
	c.Response().Header().Set("ETag", etag)
	c.Response().Header().Set("Cache-Control", "no-cache")
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, render.ContentType, out.SVG)
}

func (s *Server) handleEmbedCode(c echo.Context) error {
	chart, err := s.loadChart(c)
	if err != nil {
		return err
	}
	width, height := chart.Config.Dimensions()
	if chart.Config.Size == nil && s.opts.Render.Width > 0 && s.opts.Render.Height > 0 {
		width, height = s.opts.Render.Width, s.opts.Render.Height
	}
	return c.JSON(http.StatusOK, EmbedCodeResponse{
		ID:     chart.ID,
		URL:    fmt.Sprintf("%s/embed/%s", s.opts.PublicURL, chart.ID),
		Code:   render.EmbedSnippet(s.opts.PublicURL, chart.ID, width, height),
		Width:  width,
		Height: height,
	})
}

func (s *Server) handleEmbedPage(c echo.Context) error {
	chart, err := s.loadChart(c)
	if err != nil {
		return err
	}
	out := s.renderChart(c, chart, SurfaceEmbed)

	theme := types.ThemeLight
	if out.Plan != nil {
		theme = out.Plan.Theme
	}
	page, err := render.EmbedPage(fmt.Sprintf("%s chart %s", chart.Config.Type, chart.ID), theme, out.SVG)
	if err != nil {
		return cserrors.NewRenderError(cserrors.CodeRenderFailed, "failed to build embed page", err)
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (s *Server) handleExport(c echo.Context) error {
	if s.objects == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Exports are disabled")
	}
	chart, err := s.loadChart(c)
	if err != nil {
		return err
	}
	out := s.renderChart(c, chart, SurfaceExport)

	theme := types.ThemeLight
	if out.Plan != nil {
		theme = out.Plan.Theme
	}
	key := storage.ExportKey(chart.ID, string(theme), "svg", out.SVG)
	etag, err := s.objects.Put(c.Request().Context(), key, out.SVG, render.ContentType)
	if err != nil {
		return cserrors.NewStorageError(cserrors.CodeWriteFailed, "failed to store export", err)
	}

	s.log.WithField("chart_id", chart.ID).WithField("key", key).Info("chart exported")
	return c.JSON(http.StatusCreated, ExportResponse{
		ID:          chart.ID,
		Key:         key,
		ETag:        etag,
		ContentType: render.ContentType,
		Size:        len(out.SVG),
		Placeholder: out.Failed(),
	})
}
