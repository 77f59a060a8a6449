package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/post"
	"github.com/VitaminP8/postfeed/models"
)

type PostSQLiteStorage struct {
	db *gorm.DB
}

func NewPostSQLiteStorage(db *gorm.DB) *PostSQLiteStorage {
	return &PostSQLiteStorage{db: db}
}

func (s *PostSQLiteStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	row := &models.Post{
		Title:   input.Title,
		Content: input.Content,
		Author:  input.Author,
	}

	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	return toModelPost(row), nil
}

func (s *PostSQLiteStorage) GetPostById(id string) (*model.Post, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, post.ErrPostNotFound
	}

	var row models.Post
	err := s.db.Where("id = ?", n).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, post.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get post by id: %w", err)
	}

	return toModelPost(&row), nil
}

func (s *PostSQLiteStorage) GetAllPosts() ([]*model.Post, error) {
	var rows []models.Post
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not get posts: %w", err)
	}

	results := make([]*model.Post, 0, len(rows))
	for i := range rows {
		results = append(results, toModelPost(&rows[i]))
	}

	return results, nil
}

func (s *PostSQLiteStorage) DeletePostById(id string) error {
	n, ok := parseID(id)
	if !ok {
		return post.ErrPostNotFound
	}

	res := s.db.Where("id = ?", n).Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("could not delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return post.ErrPostNotFound
	}

	return nil
}

// parseID rejects ids that cannot name a row, so they read as not found.
func parseID(id string) (uint64, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

func toModelPost(row *models.Post) *model.Post {
	return &model.Post{
		ID:      strconv.FormatUint(uint64(row.ID), 10),
		Title:   row.Title,
		Content: row.Content,
		Author:  row.Author,
	}
}
