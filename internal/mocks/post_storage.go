package mocks

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/post"
)

// ErrStorageUnavailable is a convenience failure for tests exercising error paths.
var ErrStorageUnavailable = errors.New("storage unavailable")

type MockPostStorage struct {
	posts  []*model.Post
	nextID int
	mu     sync.Mutex

	// Err, when set, is returned by every call instead of touching the posts.
	Err error
}

func NewMockPostStorage() *MockPostStorage {
	return &MockPostStorage{
		posts:  make([]*model.Post, 0),
		nextID: 1,
	}
}

func (m *MockPostStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	p := &model.Post{
		ID:      strconv.Itoa(m.nextID),
		Title:   input.Title,
		Content: input.Content,
		Author:  input.Author,
	}
	m.nextID++
	m.posts = append(m.posts, p)

	copied := *p
	return &copied, nil
}

func (m *MockPostStorage) GetPostById(id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	for _, p := range m.posts {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, post.ErrPostNotFound
}

func (m *MockPostStorage) GetAllPosts() ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	posts := make([]*model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		copied := *p
		posts = append(posts, &copied)
	}
	return posts, nil
}

func (m *MockPostStorage) DeletePostById(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return post.ErrPostNotFound
}
