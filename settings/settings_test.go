package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	row *Settings
	err error
}

func (s stubStore) GetSettings(ctx context.Context, user string) (*Settings, error) {
	return s.row, s.err
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func TestApplyNilRow(t *testing.T) {
	assert.Equal(t, Defaults, Apply(nil))
}

func TestApplyPartialRow(t *testing.T) {
	eff := Apply(&Settings{
		MinPrice:       f64(10),
		MaxPrice:       f64(50),
		MaxPagesPerRun: i(8),
	})

	assert.Equal(t, 10.0, eff.MinPrice)
	assert.Equal(t, 50.0, eff.MaxPrice)
	assert.Equal(t, 8, eff.MaxPagesPerRun)
	assert.Equal(t, Defaults.MinCommissionRate, eff.MinCommissionRate)
	assert.Equal(t, Defaults.ItemsPerPage, eff.ItemsPerPage)
}

func TestApplyZeroCountsAsUnset(t *testing.T) {
	eff := Apply(&Settings{MinPrice: f64(0), ItemsPerPage: i(0), MaxPagesPerRun: i(-3)})

	assert.Equal(t, Defaults.MinPrice, eff.MinPrice)
	assert.Equal(t, Defaults.ItemsPerPage, eff.ItemsPerPage)
	assert.Equal(t, Defaults.MaxPagesPerRun, eff.MaxPagesPerRun)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Defaults, Resolve(ctx, stubStore{}, DefaultUser), "absent row")
	assert.Equal(t, Defaults, Resolve(ctx, stubStore{err: errors.New("boom")}, DefaultUser), "failing store")

	eff := Resolve(ctx, stubStore{row: &Settings{MaxPrice: f64(80)}}, DefaultUser)
	assert.Equal(t, 80.0, eff.MaxPrice)
}

func TestSetField(t *testing.T) {
	var s Settings

	require.NoError(t, s.SetField("min_price", "12,50"))
	require.NotNil(t, s.MinPrice)
	assert.Equal(t, 12.5, *s.MinPrice)

	require.NoError(t, s.SetField("max_pages_per_run", "7"))
	assert.Equal(t, 7, *s.MaxPagesPerRun)

	require.NoError(t, s.SetField("min_price", "reset"))
	assert.Nil(t, s.MinPrice)

	assert.Error(t, s.SetField("items_per_page", "0"))
	assert.Error(t, s.SetField("max_price", "abc"))
	assert.Error(t, s.SetField("color", "blue"))
}

func TestFieldsAreAllSettable(t *testing.T) {
	for _, field := range Fields {
		var s Settings
		assert.NoError(t, s.SetField(field, "3"), field)
	}
}
