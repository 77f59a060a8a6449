package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/rate"
)

func TestRateSQLiteStorage(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SeedRates(db, rate.DefaultRates()))
	storage := NewRateSQLiteStorage(db)

	t.Run("All rates keep seed order", func(t *testing.T) {
		rates, err := storage.GetAllRates()
		require.NoError(t, err)
		require.Len(t, rates, 3)
		assert.Equal(t, "USD", rates[0].Currency)
		assert.Equal(t, "EUR", rates[1].Currency)
		assert.Equal(t, "GBP", rates[2].Currency)
	})

	t.Run("Exact match", func(t *testing.T) {
		rates, err := storage.GetRatesByCurrency("EUR")
		require.NoError(t, err)
		assert.Equal(t, []*model.Rate{{Currency: "EUR", Rate: 0.85}}, rates)
	})

	t.Run("Case sensitive", func(t *testing.T) {
		rates, err := storage.GetRatesByCurrency("usd")
		require.NoError(t, err)
		assert.Empty(t, rates)
	})
}
