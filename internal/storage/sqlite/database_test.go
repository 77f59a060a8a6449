package sqlite

import (
	"io"
	"testing"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/post"
	"github.com/VitaminP8/postfeed/internal/rate"
	"github.com/VitaminP8/postfeed/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupTestDB opens a fresh in-memory database and closes it with the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(MemoryDSN, testLogger())
	require.NoError(t, err, "Failed to connect to in-memory SQLite")
	t.Cleanup(func() {
		assert.NoError(t, Close(db, testLogger()))
	})

	return db
}

func TestOpen_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	assert.True(t, db.HasTable(&models.Post{}))
	assert.True(t, db.HasTable(&models.Rate{}))
}

func TestCloseWithNilDB(t *testing.T) {
	assert.NoError(t, Close(nil, testLogger()))
}

func TestSeedPosts(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SeedPosts(db, post.DefaultPosts()))

	var count int
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, 2, count)

	t.Run("Non numeric id is rejected", func(t *testing.T) {
		err := SeedPosts(db, []model.Post{{ID: "abc", Title: "t", Content: "c", Author: "a"}})
		assert.Error(t, err)
	})
}

func TestSeedRates(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SeedRates(db, rate.DefaultRates()))

	var count int
	require.NoError(t, db.Model(&models.Rate{}).Count(&count).Error)
	assert.Equal(t, 3, count)
}
