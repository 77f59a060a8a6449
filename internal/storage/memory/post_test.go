package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/post"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInput(n int) model.PostInput {
	return model.PostInput{
		Title:   "Post " + strconv.Itoa(n),
		Content: "Content " + strconv.Itoa(n),
		Author:  "Author " + strconv.Itoa(n),
	}
}

func TestPostMemoryStorage_CreatePost(t *testing.T) {
	storage := NewPostMemoryStorage()
	ctx := context.Background()

	t.Run("Ids follow creation order", func(t *testing.T) {
		for i := 1; i <= 5; i++ {
			created, err := storage.CreatePost(ctx, newInput(i))
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(i), created.ID)
			assert.Equal(t, "Post "+strconv.Itoa(i), created.Title)
			assert.Equal(t, "Content "+strconv.Itoa(i), created.Content)
			assert.Equal(t, "Author "+strconv.Itoa(i), created.Author)
		}
	})

	t.Run("Created post is stored", func(t *testing.T) {
		created, err := storage.CreatePost(ctx, newInput(6))
		require.NoError(t, err)

		postFromStorage, err := storage.GetPostById(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, postFromStorage)
	})
}

func TestPostMemoryStorage_Seed(t *testing.T) {
	storage := NewPostMemoryStorage(post.DefaultPosts()...)
	ctx := context.Background()

	posts, err := storage.GetAllPosts()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "1", posts[0].ID)
	assert.Equal(t, "2", posts[1].ID)

	created, err := storage.CreatePost(ctx, model.PostInput{Title: "Post 3", Content: "C", Author: "A"})
	require.NoError(t, err)
	assert.Equal(t, &model.Post{ID: "3", Title: "Post 3", Content: "C", Author: "A"}, created)
}

func TestPostMemoryStorage_GetPostById(t *testing.T) {
	storage := NewPostMemoryStorage()
	ctx := context.Background()

	created, err := storage.CreatePost(ctx, newInput(1))
	require.NoError(t, err)

	t.Run("Getting exists post", func(t *testing.T) {
		retrievedPost, err := storage.GetPostById(created.ID)

		require.NoError(t, err)
		assert.Equal(t, created, retrievedPost)
	})

	t.Run("Trying to get not exist post", func(t *testing.T) {
		_, err := storage.GetPostById("23425532")

		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})

	t.Run("Returned post is a copy", func(t *testing.T) {
		retrievedPost, err := storage.GetPostById(created.ID)
		require.NoError(t, err)
		retrievedPost.Title = "changed"

		again, err := storage.GetPostById(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Post 1", again.Title)
	})
}

func TestPostMemoryStorage_GetAllPosts(t *testing.T) {
	storage := NewPostMemoryStorage()
	ctx := context.Background()

	t.Run("Empty storage returns empty list", func(t *testing.T) {
		posts, err := storage.GetAllPosts()
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	for i := 1; i <= 3; i++ {
		_, err := storage.CreatePost(ctx, newInput(i))
		require.NoError(t, err)
	}

	t.Run("Get all posts in insertion order", func(t *testing.T) {
		posts, err := storage.GetAllPosts()

		require.NoError(t, err)
		require.Len(t, posts, 3)
		for i, p := range posts {
			assert.Equal(t, strconv.Itoa(i+1), p.ID)
		}
	})
}

func TestPostMemoryStorage_DeletePostById(t *testing.T) {
	storage := NewPostMemoryStorage()
	ctx := context.Background()

	first, err := storage.CreatePost(ctx, newInput(1))
	require.NoError(t, err)
	second, err := storage.CreatePost(ctx, newInput(2))
	require.NoError(t, err)

	t.Run("Delete existing post", func(t *testing.T) {
		err := storage.DeletePostById(first.ID)
		require.NoError(t, err)

		_, err = storage.GetPostById(first.ID)
		assert.ErrorIs(t, err, post.ErrPostNotFound)

		posts, err := storage.GetAllPosts()
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, second.ID, posts[0].ID)
	})

	t.Run("Second delete of the same id reports not found", func(t *testing.T) {
		err := storage.DeletePostById(first.ID)
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})

	t.Run("Ids are not reused after delete", func(t *testing.T) {
		err := storage.DeletePostById(second.ID)
		require.NoError(t, err)

		created, err := storage.CreatePost(ctx, newInput(3))
		require.NoError(t, err)
		assert.Equal(t, "3", created.ID)
	})
}

func TestPostMemoryStorage_Concurrent(t *testing.T) {
	storage := NewPostMemoryStorage()
	ctx := context.Background()

	numWriters := 20
	var wg sync.WaitGroup
	ids := make(chan string, numWriters)

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			created, err := storage.CreatePost(ctx, newInput(idx))
			assert.NoError(t, err)
			ids <- created.ID

			_, err = storage.GetAllPosts()
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %s handed out twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, numWriters)

	posts, err := storage.GetAllPosts()
	require.NoError(t, err)
	assert.Len(t, posts, numWriters)
}
