package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/post"
)

type PostMemoryStorage struct {
	mu     sync.Mutex
	posts  []*model.Post
	nextId int // ids are never handed out twice, even after deletes
}

// NewPostMemoryStorage creates a storage holding the given posts in order.
// The id counter continues after the largest numeric seed id.
func NewPostMemoryStorage(seed ...model.Post) *PostMemoryStorage {
	s := &PostMemoryStorage{
		posts:  make([]*model.Post, 0, len(seed)),
		nextId: 1,
	}
	for i := range seed {
		p := seed[i]
		s.posts = append(s.posts, &p)
		if n, err := strconv.Atoi(p.ID); err == nil && n >= s.nextId {
			s.nextId = n + 1
		}
	}
	return s
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextId)
	s.nextId++

	p := &model.Post{
		ID:      id,
		Title:   input.Title,
		Content: input.Content,
		Author:  input.Author,
	}

	s.posts = append(s.posts, p)
	return clonePost(p), nil
}

func (s *PostMemoryStorage) GetPostById(id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return clonePost(s.posts[i]), nil
	}
	return nil, post.ErrPostNotFound
}

func (s *PostMemoryStorage) GetAllPosts() ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]*model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, clonePost(p))
	}

	return posts, nil
}

func (s *PostMemoryStorage) DeletePostById(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return post.ErrPostNotFound
	}

	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return nil
}

func (s *PostMemoryStorage) indexOf(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clonePost(p *model.Post) *model.Post {
	c := *p
	return &c
}
