package rate

import "github.com/VitaminP8/postfeed/graph/model"

// RateStorage serves the read-only currency rate table.
type RateStorage interface {
	GetAllRates() ([]*model.Rate, error)
	// GetRatesByCurrency matches currency exactly, without case folding or trimming.
	GetRatesByCurrency(currency string) ([]*model.Rate, error)
}

// DefaultRates is the fixed rate table the server starts with.
func DefaultRates() []model.Rate {
	return []model.Rate{
		{Currency: "USD", Rate: 1.0},
		{Currency: "EUR", Rate: 0.85},
		{Currency: "GBP", Rate: 0.73},
	}
}
