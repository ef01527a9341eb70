package validation

import (
	"fmt"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// References reports configuration keys that do not name a dataset field.
// Cartesian, radar and pie charts need at least one series key.
func References(cfg types.ChartConfig, ds types.Dataset) []cserrors.Issue {
	var issues []cserrors.Issue
	if cfg.XKey != "" && !ds.HasField(cfg.XKey) {
		issues = append(issues, cserrors.Issue{
			Path:    "xKey",
			Message: fmt.Sprintf("field %q does not exist in dataset", cfg.XKey),
		})
	}
	if len(cfg.YKeys) == 0 && cfg.Type != types.ChartRadial {
		issues = append(issues, cserrors.Issue{Path: "yKeys", Message: "at least one series key is required"})
	}
	for i, k := range cfg.YKeys {
		if !ds.HasField(k) {
			issues = append(issues, cserrors.Issue{
				Path:    fmt.Sprintf("yKeys.%d", i),
				Message: fmt.Sprintf("field %q does not exist in dataset", k),
			})
		}
	}
	for i, k := range cfg.LineKeys {
		if !ds.HasField(k) {
			issues = append(issues, cserrors.Issue{
				Path:    fmt.Sprintf("lineKeys.%d", i),
				Message: fmt.Sprintf("field %q does not exist in dataset", k),
			})
		}
	}
	return issues
}

// CheckReferences wraps References as a validation error, or nil.
func CheckReferences(cfg types.ChartConfig, ds types.Dataset) error {
	issues := References(cfg, ds)
	if len(issues) == 0 {
		return nil
	}
	return cserrors.NewValidationError(cserrors.CodeInvalidReference, MsgInvalidConfig, issues)
}
