package sqlite

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/models"
)

type RateSQLiteStorage struct {
	db *gorm.DB
}

func NewRateSQLiteStorage(db *gorm.DB) *RateSQLiteStorage {
	return &RateSQLiteStorage{db: db}
}

func (s *RateSQLiteStorage) GetAllRates() ([]*model.Rate, error) {
	var rows []models.Rate
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not get rates: %w", err)
	}
	return toModelRates(rows), nil
}

func (s *RateSQLiteStorage) GetRatesByCurrency(currency string) ([]*model.Rate, error) {
	var rows []models.Rate
	// sqlite "=" on TEXT is binary, so the match stays case sensitive
	if err := s.db.Where("currency = ?", currency).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not get rates for %q: %w", currency, err)
	}
	return toModelRates(rows), nil
}

func toModelRates(rows []models.Rate) []*model.Rate {
	rates := make([]*model.Rate, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, &model.Rate{Currency: row.Currency, Rate: row.Rate})
	}
	return rates
}
