package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/internal/importer"
	"github.com/chartsmith/chartsmith/internal/presets"
	"github.com/chartsmith/chartsmith/internal/validation"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// ValidateDatasetResponse is the body of POST /v1/datasets/validate.
type ValidateDatasetResponse struct {
	Dataset types.Dataset `json:"dataset"`
	Message string        `json:"message"`
}

// ListPresetsResponse is the body of GET /v1/presets.
type ListPresetsResponse struct {
	Presets []presets.Preset `json:"presets"`
}

// handleValidateDataset checks raw dataset JSON text, the same boundary the
// dataset editor uses before it replaces the working dataset.
func (s *Server) handleValidateDataset(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return err
		}
		return cserrors.NewValidationError(cserrors.CodeInvalidBody, validation.MsgInvalidBody,
			[]cserrors.Issue{{Message: err.Error()}})
	}
	ds, err := validation.Dataset(raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ValidateDatasetResponse{Dataset: ds, Message: "Dataset is valid"})
}

func (s *Server) handleImportDataset(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return cserrors.NewImportError(cserrors.CodeParseFailed, "No file uploaded", err)
	}
	f, err := fh.Open()
	if err != nil {
		return cserrors.NewImportError(cserrors.CodeParseFailed, "Error reading the file", err)
	}
	defer f.Close()

	res, err := importer.Import(fh.Filename, f)
	if err != nil {
		return err
	}
	s.log.WithField("file", fh.Filename).WithField("rows", len(res.Dataset.Rows)).Info("dataset imported")
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleListPresets(c echo.Context) error {
	var (
		ps  []presets.Preset
		err error
	)
	if category := c.QueryParam("category"); category != "" {
		ps, err = presets.ByCategory(presets.Category(category))
	} else {
		ps, err = presets.All()
	}
	if err != nil {
		return cserrors.NewInternalError("failed to load presets", err)
	}
	if ps == nil {
		ps = []presets.Preset{}
	}
	return c.JSON(http.StatusOK, ListPresetsResponse{Presets: ps})
}

func (s *Server) handleGetPreset(c echo.Context) error {
	p, err := presets.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleSchema(c echo.Context) error {
	switch c.Param("name") {
	case "config":
		return c.JSON(http.StatusOK, validation.ConfigSchema())
	case "dataset":
		return c.JSON(http.StatusOK, validation.DatasetSchema())
	default:
		return echo.NewHTTPError(http.StatusNotFound, "Schema not found")
	}
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.stats.Snapshot())
}
