package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/internal/store"
	"github.com/chartsmith/chartsmith/internal/validation"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// Response messages of the chart routes.
const (
	MsgChartSaved    = "Chart saved successfully"
	MsgChartUpdated  = "Chart updated successfully"
	MsgChartDeleted  = "Chart deleted successfully"
	MsgChartNotFound = "Chart not found"
)

// ListChartsResponse is the body of GET /v1/charts.
type ListChartsResponse struct {
	Charts []types.ChartSummary `json:"charts"`
}

func errChartNotFound() error {
	return cserrors.NewNotFoundError(cserrors.CodeChartNotFound, MsgChartNotFound)
}

// storeError maps store failures onto the API taxonomy.
func storeError(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errChartNotFound()
	}
	return cserrors.NewStorageError(cserrors.CodeWriteFailed, "failed to "+op+" chart", err)
}

// loadChart fetches the chart named by the :id path parameter.
func (s *Server) loadChart(c echo.Context) (*types.SavedChart, error) {
	chart, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errChartNotFound()
		}
		return nil, cserrors.NewStorageError(cserrors.CodeReadFailed, "failed to read chart", err)
	}
	return chart, nil
}

// readChartRequest validates a {config, dataset} body, including reference
// checks when they are enabled.
func (s *Server) readChartRequest(c echo.Context) (validation.ChartRequest, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return validation.ChartRequest{}, err
		}
		return validation.ChartRequest{}, cserrors.NewValidationError(cserrors.CodeInvalidBody,
			validation.MsgInvalidBody, []cserrors.Issue{{Message: err.Error()}})
	}
	req, err := validation.Request(raw)
	if err != nil {
		return validation.ChartRequest{}, err
	}
	if s.opts.StrictReferences {
		if err := validation.CheckReferences(req.Config, req.Dataset); err != nil {
			return validation.ChartRequest{}, err
		}
	}
	return req, nil
}

func (s *Server) handleListCharts(c echo.Context) error {
	summaries, err := s.store.Summaries(c.Request().Context())
	if err != nil {
		return cserrors.NewStorageError(cserrors.CodeReadFailed, "failed to list charts", err)
	}
	if summaries == nil {
		summaries = []types.ChartSummary{}
	}
	return c.JSON(http.StatusOK, ListChartsResponse{Charts: summaries})
}

func (s *Server) handleCreateChart(c echo.Context) error {
	req, err := s.readChartRequest(c)
	if err != nil {
		return err
	}

	// The config id is the chart id; a blank one is generated.
	if req.Config.ID == "" {
		req.Config.ID = types.NewChartID()
	}
	now := time.Now().UTC()
	chart := &types.SavedChart{
		ID:        req.Config.ID,
		Config:    req.Config,
		Dataset:   req.Dataset,
		CreatedAt: now,
		UpdatedAt: now,
	}
	saved, err := s.store.Put(c.Request().Context(), chart)
	if err != nil {
		return storeError(err, "save")
	}

	s.log.WithField("chart_id", saved.ID).WithField("type", saved.Config.Type).Info("chart saved")
	return c.JSON(http.StatusOK, MessageResponse{ID: saved.ID, Message: MsgChartSaved})
}

func (s *Server) handleGetChart(c echo.Context) error {
	chart, err := s.loadChart(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chart)
}

func (s *Server) handleUpdateChart(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// An unknown id is reported before any body problem.
	if _, err := s.loadChart(c); err != nil {
		return err
	}
	req, err := s.readChartRequest(c)
	if err != nil {
		return err
	}

	req.Config.ID = id
	saved, err := s.store.Update(ctx, &types.SavedChart{
		ID:        id,
		Config:    req.Config,
		Dataset:   req.Dataset,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return storeError(err, "update")
	}

	s.log.WithField("chart_id", saved.ID).Info("chart updated")
	return c.JSON(http.StatusOK, MessageResponse{ID: saved.ID, Message: MsgChartUpdated})
}

func (s *Server) handleDeleteChart(c echo.Context) error {
	id := c.Param("id")
	if err := s.store.Delete(c.Request().Context(), id); err != nil {
		return storeError(err, "delete")
	}
	s.log.WithField("chart_id", id).Info("chart deleted")
	return c.JSON(http.StatusOK, MessageResponse{Message: MsgChartDeleted})
}

// Ping reports whether the store answers a read.
func (s *Server) Ping(ctx context.Context) error {
	_, err := s.store.Summaries(ctx)
	return err
}
