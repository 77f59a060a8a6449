package post

import (
	"context"
	"errors"

	"github.com/VitaminP8/postfeed/graph/model"
)

// ErrPostNotFound is returned by lookups and deletes for an unknown id.
var ErrPostNotFound = errors.New("post not found")

// PostStorage keeps posts. Implementations are safe for concurrent use and
// assign ids from a counter that is never reused after a delete.
type PostStorage interface {
	CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error)
	GetPostById(id string) (*model.Post, error)
	GetAllPosts() ([]*model.Post, error)
	DeletePostById(id string) error
}
