package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerKey(t *testing.T) {
	key, err := LayerKey("precip", "spi3", "2020-05", "44.05,25.06,63.33,39.78")
	require.NoError(t, err)
	assert.Equal(t, "map:precip:spi3:2020-05:44.05,25.06,63.33,39.78", key)

	t.Run("CaseAndSpaceCollide", func(t *testing.T) {
		other, err := LayerKey(" PRECIP ", "SPI3", "2020-05", "44.05,25.06,63.33,39.78")
		require.NoError(t, err)
		assert.Equal(t, key, other)
	})

	t.Run("NoBounds", func(t *testing.T) {
		key, err := LayerKey("precip", "spi3", "2020-05", "")
		require.NoError(t, err)
		assert.Equal(t, "map:precip:spi3:2020-05:all", key)
	})

	t.Run("MissingSelectors", func(t *testing.T) {
		for _, args := range [][4]string{
			{"", "spi3", "2020-05", ""},
			{"precip", "", "2020-05", ""},
			{"precip", "spi3", "", ""},
		} {
			_, err := LayerKey(args[0], args[1], args[2], args[3])
			assert.ErrorIs(t, err, ErrInvalidCacheKey)
		}
	})
}

func TestOverviewKey(t *testing.T) {
	key, err := OverviewKey("Precip", "SPEI6", "2021-11")
	require.NoError(t, err)
	assert.Equal(t, "overview:precip:spei6:2021-11", key)

	_, err = OverviewKey("precip", "spei6", "")
	assert.ErrorIs(t, err, ErrInvalidCacheKey)
}

func TestSeriesKey(t *testing.T) {
	key, err := SeriesKey("precip", "spi3", "IR-021")
	require.NoError(t, err)
	assert.Equal(t, "series:precip:spi3:IR-021", key)

	// Feature ids keep their case.
	other, err := SeriesKey("precip", "spi3", "ir-021")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	_, err = SeriesKey("precip", "spi3", "  ")
	assert.ErrorIs(t, err, ErrInvalidCacheKey)
}

func TestKPIKey(t *testing.T) {
	key, err := KPIKey("precip", "spi3", "IR-021", "2020-05")
	require.NoError(t, err)
	assert.Equal(t, "kpi:precip:spi3:IR-021:2020-05", key)

	t.Run("MonthDistinguishes", func(t *testing.T) {
		other, err := KPIKey("precip", "spi3", "IR-021", "2020-06")
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("NamespacesAreDisjoint", func(t *testing.T) {
		series, err := SeriesKey("precip", "spi3", "IR-021")
		require.NoError(t, err)
		assert.NotEqual(t, key, series)
	})

	_, err = KPIKey("precip", "spi3", "IR-021", "")
	assert.ErrorIs(t, err, ErrInvalidCacheKey)
}
