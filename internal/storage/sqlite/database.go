package sqlite

import (
	"fmt"
	"strconv"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/sirupsen/logrus"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/models"
)

// MemoryDSN points at a private in-process database that lives as long as its connection.
const MemoryDSN = ":memory:"

// Open connects to SQLite and migrates the schema.
func Open(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	// every pooled connection to :memory: would be a separate database
	db.DB().SetMaxOpenConns(1)
	db.LogMode(false)

	if err := db.AutoMigrate(&models.Post{}, &models.Rate{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.WithField("dsn", dsn).Info("Successfully connected to the database")
	return db, nil
}

// Close closes the database connection.
func Close(db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}

	logger.Info("Database connection closed")
	return nil
}

// SeedPosts inserts posts keeping their ids, so new posts continue after them.
func SeedPosts(db *gorm.DB, posts []model.Post) error {
	for _, p := range posts {
		id, err := strconv.ParseUint(p.ID, 10, 64)
		if err != nil {
			return fmt.Errorf("seed post %q: id must be numeric: %w", p.ID, err)
		}
		row := &models.Post{ID: uint(id), Title: p.Title, Content: p.Content, Author: p.Author}
		if err := db.Create(row).Error; err != nil {
			return fmt.Errorf("seed post %q: %w", p.ID, err)
		}
	}
	return nil
}

// SeedRates fills the rate table.
func SeedRates(db *gorm.DB, rates []model.Rate) error {
	for _, r := range rates {
		row := &models.Rate{Currency: r.Currency, Rate: r.Rate}
		if err := db.Create(row).Error; err != nil {
			return fmt.Errorf("seed rate %q: %w", r.Currency, err)
		}
	}
	return nil
}
