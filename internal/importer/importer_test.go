package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		in   string
		want types.ValueKind
	}{
		{"186", types.KindNumber},
		{" 12.5 ", types.KindNumber},
		{"-3", types.KindNumber},
		{"1e3", types.KindNumber},
		{"", types.KindString},
		{"   ", types.KindString},
		{"NaN", types.KindString},
		{"Inf", types.KindString},
		{"2024-04-05", types.KindDate},
		{"4/5/2024", types.KindDate},
		{"2024-04-05T10:00:00Z", types.KindDate},
		{"2024-99-99", types.KindString},
		{"January", types.KindString},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InferKind(tt.in), "%q", tt.in)
	}
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, types.Number(186), Coerce("186"))
	assert.Equal(t, types.String("May"), Coerce("May"))
	assert.Equal(t, types.Date(time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)), Coerce("4/5/2024"))
}

func TestCSV(t *testing.T) {
	in := " month , desktop,mobile\nJanuary,186,80\n,,\nFebruary,305,200\nMarch,237\n"
	res, err := CSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "desktop", "mobile"}, res.Dataset.Keys())
	require.Len(t, res.Dataset.Rows, 3)
	assert.Equal(t, types.String("January"), res.Dataset.Rows[0]["month"])
	assert.Equal(t, types.Number(186), res.Dataset.Rows[0]["desktop"])
	assert.Equal(t, types.String(""), res.Dataset.Rows[2]["mobile"])
	assert.Equal(t, "Successfully imported 3 rows with 3 columns", res.Message)
}

func TestCSV_HeaderCleanup(t *testing.T) {
	in := "\ufeffname,,name\na,b,c\n"
	res, err := CSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "column_2", "name_1"}, res.Dataset.Keys())
}

func TestCSV_Empty(t *testing.T) {
	for _, in := range []string{"", "a,b\n", "a,b\n,\n"} {
		_, err := CSV(strings.NewReader(in))
		require.Error(t, err, "%q", in)
		assert.Equal(t, cserrors.ErrCategoryImport, cserrors.GetCategory(err))
	}
}

func TestXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"month", "desktop", "mobile"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"January", 186, 80}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"February", 305}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := XLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, sheet, res.Sheet)
	require.Len(t, res.Dataset.Rows, 2)
	assert.Equal(t, types.Number(186), res.Dataset.Rows[0]["desktop"])
	assert.Equal(t, types.String(""), res.Dataset.Rows[1]["mobile"])
	assert.Contains(t, res.Message, "Successfully imported 2 rows with 3 columns")
}

func TestImport_DetectsFormat(t *testing.T) {
	res, err := Import("Data.CSV", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Len(t, res.Dataset.Rows, 1)

	_, err = Import("data.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, cserrors.CodeUnsupportedFormat, cserrors.GetCode(err))

	_, err = Import("data.xlsx", strings.NewReader("not a zip"))
	require.Error(t, err)
	assert.Equal(t, cserrors.CodeParseFailed, cserrors.GetCode(err))
}
