package post

import "github.com/VitaminP8/postfeed/graph/model"

// DefaultPosts returns the sample posts a fresh server is seeded with.
func DefaultPosts() []model.Post {
	return []model.Post{
		{ID: "1", Title: "Post 1", Content: "Content 1", Author: "Author 1"},
		{ID: "2", Title: "Post 2", Content: "Content 2", Author: "Author 2"},
	}
}
