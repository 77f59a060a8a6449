package memory

import (
	"testing"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/rate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateMemoryStorage(t *testing.T) {
	storage := NewRateMemoryStorage(rate.DefaultRates())

	t.Run("All rates", func(t *testing.T) {
		rates, err := storage.GetAllRates()
		require.NoError(t, err)
		assert.Len(t, rates, 3)
	})

	t.Run("Exact currency match", func(t *testing.T) {
		rates, err := storage.GetRatesByCurrency("EUR")
		require.NoError(t, err)
		assert.Equal(t, []*model.Rate{{Currency: "EUR", Rate: 0.85}}, rates)
	})

	t.Run("Match is case sensitive", func(t *testing.T) {
		rates, err := storage.GetRatesByCurrency("usd")
		require.NoError(t, err)
		assert.NotNil(t, rates)
		assert.Empty(t, rates)
	})

	t.Run("No trimming", func(t *testing.T) {
		rates, err := storage.GetRatesByCurrency(" GBP")
		require.NoError(t, err)
		assert.Empty(t, rates)
	})

	t.Run("Caller cannot modify the table", func(t *testing.T) {
		rates, err := storage.GetRatesByCurrency("USD")
		require.NoError(t, err)
		require.Len(t, rates, 1)
		rates[0].Rate = 42

		again, err := storage.GetRatesByCurrency("USD")
		require.NoError(t, err)
		assert.Equal(t, 1.0, again[0].Rate)
	})
}
