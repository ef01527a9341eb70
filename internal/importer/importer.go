// Package importer builds datasets from uploaded CSV and XLSX files.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/pkg/types"
	"github.com/xuri/excelize/v2"
)

// Format is a supported upload format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MaxFileSize bounds uploads accepted by Import.
const MaxFileSize = 10 << 20

// Result is a successfully imported dataset.
type Result struct {
	Dataset types.Dataset `json:"dataset"`
	Message string        `json:"message"`
	Sheet   string        `json:"sheet,omitempty"`
}

// DetectFormat maps a file name to a format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", cserrors.NewImportError(cserrors.CodeUnsupportedFormat,
			"Unsupported file format. Please upload a CSV or XLSX file.", nil)
	}
}

// Import reads a file of the format implied by name.
func Import(name string, r io.Reader) (Result, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return Result{}, err
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed, "Error reading the file", err)
	}
	if len(data) > MaxFileSize {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed,
			fmt.Sprintf("File exceeds %d bytes", MaxFileSize), nil)
	}
	switch format {
	case FormatCSV:
		return CSV(bytes.NewReader(data))
	default:
		return XLSX(bytes.NewReader(data))
	}
}

// CSV parses a header row followed by data rows. Header names are trimmed,
// rows whose cells are all empty are skipped and every cell is type-inferred.
func CSV(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed,
			"CSV parsing error: "+err.Error(), err)
	}
	if len(records) < 2 {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed, "No data found in CSV file", nil)
	}

	fields := headerFields(records[0])
	rows := make([]types.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(types.Row, len(fields))
		for i, f := range fields {
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			row[f.Key] = Coerce(cell)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed, "No data found in CSV file", nil)
	}

	return Result{
		Dataset: types.Dataset{Fields: fields, Rows: rows},
		Message: fmt.Sprintf("Successfully imported %d rows with %d columns", len(rows), len(fields)),
	}, nil
}

// XLSX reads the first worksheet. The first row is the header; missing cells
// become empty strings and numeric cells become numbers.
func XLSX(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed,
			"Error processing XLSX: "+err.Error(), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed, "No worksheets found in the file", nil)
	}
	sheet := sheets[0]

	records, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed,
			"Error processing XLSX: "+err.Error(), err)
	}
	if len(records) < 2 {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed, "No data found in the worksheet", nil)
	}

	fields := headerFields(records[0])
	rows := make([]types.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(types.Row, len(fields))
		for i, fd := range fields {
			if i < len(rec) && rec[i] != "" {
				row[fd.Key] = Coerce(rec[i])
			} else {
				row[fd.Key] = types.String("")
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return Result{}, cserrors.NewImportError(cserrors.CodeParseFailed, "No data found in the worksheet", nil)
	}

	return Result{
		Dataset: types.Dataset{Fields: fields, Rows: rows},
		Message: fmt.Sprintf("Successfully imported %d rows with %d columns from sheet %q", len(rows), len(fields), sheet),
		Sheet:   sheet,
	}, nil
}

// headerFields turns header cells into fields. Blank headers become
// column_N and repeated headers get a numeric suffix.
func headerFields(header []string) []types.ChartField {
	fields := make([]types.ChartField, 0, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		key := name
		if n := seen[name]; n > 0 {
			key = name + "_" + strconv.Itoa(n)
		}
		seen[name]++
		fields = append(fields, types.ChartField{Key: key, Label: name})
	}
	return fields
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
