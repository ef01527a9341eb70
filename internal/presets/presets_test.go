package presets

import (
	"testing"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/internal/validation"
	"github.com/chartsmith/chartsmith/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	ps, err := All()
	require.NoError(t, err)
	assert.Len(t, ps, 39)

	for _, p := range ps {
		assert.NotEmpty(t, p.Title, p.ID)
		assert.True(t, p.Config.Type.Valid(), p.ID)
		assert.Empty(t, validation.References(p.Config, p.Dataset), p.ID)
	}
}

func TestByCategory(t *testing.T) {
	counts := map[Category]int{}
	for _, c := range Categories {
		ps, err := ByCategory(c)
		require.NoError(t, err)
		assert.NotEmpty(t, ps, c)
		counts[c] = len(ps)
	}
	assert.Equal(t, 9, counts["tooltip"])
	assert.Equal(t, 4, counts["radial"])
}

func TestGet(t *testing.T) {
	p, err := Get("bar-multiple")
	require.NoError(t, err)
	assert.Equal(t, types.ChartBar, p.Config.Type)
	assert.Equal(t, []string{"desktop", "mobile"}, p.Config.YKeys)
	require.Len(t, p.Dataset.Rows, 6)
	assert.Equal(t, types.Number(186), p.Dataset.Rows[0]["desktop"])

	_, err = Get("nope")
	assert.Equal(t, cserrors.ErrCategoryNotFound, cserrors.GetCategory(err))
}

func TestTooltipPresetsUseDemoColors(t *testing.T) {
	ps, err := ByCategory("tooltip")
	require.NoError(t, err)
	for _, p := range ps {
		assert.Equal(t, types.ColorTooltipDemo, p.Config.ColorVariant, p.ID)
		require.NotNil(t, p.Config.Tooltip, p.ID)
	}
}

func TestDatesStayStrings(t *testing.T) {
	p, err := Get("area-interactive")
	require.NoError(t, err)
	assert.Equal(t, types.String("2024-04-01"), p.Dataset.Rows[0]["date"])
}

func TestInstantiate(t *testing.T) {
	p, err := Get("line-basic")
	require.NoError(t, err)
	cfg, ds := p.Instantiate("abc")
	assert.Equal(t, "abc", cfg.ID)
	ds.Rows[0]["desktop"] = types.Number(0)

	again, _ := Get("line-basic")
	assert.Equal(t, types.Number(186), again.Dataset.Rows[0]["desktop"])
}
