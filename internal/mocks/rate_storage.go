package mocks

import (
	"sync"

	"github.com/VitaminP8/postfeed/graph/model"
)

type MockRateStorage struct {
	rates []model.Rate
	mu    sync.Mutex

	Err error
	// Calls records every currency passed to GetRatesByCurrency.
	Calls []string
}

func NewMockRateStorage(rates ...model.Rate) *MockRateStorage {
	return &MockRateStorage{rates: rates}
}

func (m *MockRateStorage) GetAllRates() ([]*model.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]*model.Rate, 0, len(m.rates))
	for i := range m.rates {
		r := m.rates[i]
		out = append(out, &r)
	}
	return out, nil
}

func (m *MockRateStorage) GetRatesByCurrency(currency string) ([]*model.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, currency)
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]*model.Rate, 0)
	for i := range m.rates {
		if m.rates[i].Currency == currency {
			r := m.rates[i]
			out = append(out, &r)
		}
	}
	return out, nil
}
