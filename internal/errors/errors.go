// Package errors provides structured error types for chartsmith.
// All errors include a category, code and message so that the HTTP layer
// can map them to status codes without inspecting message text.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCategory classifies errors by the boundary that produced them.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryNotFound   ErrorCategory = "NOT_FOUND"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryRender     ErrorCategory = "RENDER"
	ErrCategoryImport     ErrorCategory = "IMPORT"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidConfig    = "INVALID_CONFIG"
	CodeInvalidDataset   = "INVALID_DATASET"
	CodeInvalidReference = "INVALID_REFERENCE"
	CodeInvalidBody      = "INVALID_BODY"

	// Not found codes
	CodeChartNotFound  = "CHART_NOT_FOUND"
	CodePresetNotFound = "PRESET_NOT_FOUND"

	// Storage codes
	CodeWriteFailed    = "WRITE_FAILED"
	CodeReadFailed     = "READ_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Render codes
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
	CodeRenderFailed    = "RENDER_FAILED"

	// Import codes
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeParseFailed       = "PARSE_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// Issue is a single field-level validation problem.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String renders the issue as "path: message".
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ChartError is the structured error type used throughout the system.
type ChartError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Issues   []Issue
	Cause    error
}

// Error returns a formatted error string.
func (e *ChartError) Error() string {
	msg := e.Message
	if len(e.Issues) > 0 {
		parts := make([]string, len(e.Issues))
		for i, is := range e.Issues {
			parts[i] = is.String()
		}
		msg = msg + " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ChartError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *ChartError) Is(target error) bool {
	var t *ChartError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new ChartError.
func New(category ErrorCategory, code, message string) *ChartError {
	return &ChartError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new ChartError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *ChartError {
	return &ChartError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *ChartError) WithDetails(details map[string]interface{}) *ChartError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithIssues returns a copy of the error carrying field-level issues.
func (e *ChartError) WithIssues(issues []Issue) *ChartError {
	cp := *e
	cp.Issues = append([]Issue(nil), issues...)
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a ChartError.
func GetCategory(err error) ErrorCategory {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a ChartError.
func GetCode(err error) string {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// GetIssues extracts validation issues from an error chain.
func GetIssues(err error) []Issue {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Issues
	}
	return nil
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch GetCategory(err) {
	case ErrCategoryValidation, ErrCategoryImport:
		return http.StatusBadRequest
	case ErrCategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string, issues []Issue) *ChartError {
	return New(ErrCategoryValidation, code, message).WithIssues(issues)
}

func NewNotFoundError(code, message string) *ChartError {
	return New(ErrCategoryNotFound, code, message)
}

func NewStorageError(code, message string, cause error) *ChartError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewRenderError(code, message string, cause error) *ChartError {
	return Wrap(ErrCategoryRender, code, message, cause)
}

func NewImportError(code, message string, cause error) *ChartError {
	return Wrap(ErrCategoryImport, code, message, cause)
}

func NewInternalError(message string, cause error) *ChartError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
