package memory

import "github.com/VitaminP8/postfeed/graph/model"

// RateMemoryStorage serves a rate table fixed at construction.
type RateMemoryStorage struct {
	rates []model.Rate
}

func NewRateMemoryStorage(rates []model.Rate) *RateMemoryStorage {
	return &RateMemoryStorage{rates: append([]model.Rate(nil), rates...)}
}

func (s *RateMemoryStorage) GetAllRates() ([]*model.Rate, error) {
	rates := make([]*model.Rate, 0, len(s.rates))
	for i := range s.rates {
		r := s.rates[i]
		rates = append(rates, &r)
	}
	return rates, nil
}

func (s *RateMemoryStorage) GetRatesByCurrency(currency string) ([]*model.Rate, error) {
	rates := make([]*model.Rate, 0)
	for i := range s.rates {
		if s.rates[i].Currency == currency {
			r := s.rates[i]
			rates = append(rates, &r)
		}
	}
	return rates, nil
}
