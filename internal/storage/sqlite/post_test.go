package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/post"
)

func TestPostSQLiteStorage_CreatePost(t *testing.T) {
	storage := NewPostSQLiteStorage(setupTestDB(t))
	ctx := context.Background()

	first, err := storage.CreatePost(ctx, model.PostInput{Title: "Title 1", Content: "Content 1", Author: "Author 1"})
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Title 1", first.Title)
	assert.Equal(t, "Content 1", first.Content)
	assert.Equal(t, "Author 1", first.Author)

	second, err := storage.CreatePost(ctx, model.PostInput{Title: "Title 2", Content: "Content 2", Author: "Author 2"})
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)

	fromStorage, err := storage.GetPostById(second.ID)
	require.NoError(t, err)
	assert.Equal(t, second, fromStorage)
}

func TestPostSQLiteStorage_SeededIds(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SeedPosts(db, post.DefaultPosts()))
	storage := NewPostSQLiteStorage(db)

	created, err := storage.CreatePost(context.Background(), model.PostInput{Title: "Post 3", Content: "C", Author: "A"})
	require.NoError(t, err)
	assert.Equal(t, &model.Post{ID: "3", Title: "Post 3", Content: "C", Author: "A"}, created)

	posts, err := storage.GetAllPosts()
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestPostSQLiteStorage_GetPostById(t *testing.T) {
	storage := NewPostSQLiteStorage(setupTestDB(t))

	t.Run("Unknown id", func(t *testing.T) {
		_, err := storage.GetPostById("42")
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})

	t.Run("Non numeric id", func(t *testing.T) {
		_, err := storage.GetPostById("non-existent-id")
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})
}

func TestPostSQLiteStorage_GetAllPosts_Empty(t *testing.T) {
	storage := NewPostSQLiteStorage(setupTestDB(t))

	posts, err := storage.GetAllPosts()
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostSQLiteStorage_DeletePostById(t *testing.T) {
	storage := NewPostSQLiteStorage(setupTestDB(t))
	ctx := context.Background()

	first, err := storage.CreatePost(ctx, model.PostInput{Title: "a", Content: "b", Author: "c"})
	require.NoError(t, err)
	second, err := storage.CreatePost(ctx, model.PostInput{Title: "d", Content: "e", Author: "f"})
	require.NoError(t, err)

	t.Run("Delete existing post", func(t *testing.T) {
		require.NoError(t, storage.DeletePostById(first.ID))

		_, err := storage.GetPostById(first.ID)
		assert.ErrorIs(t, err, post.ErrPostNotFound)

		posts, err := storage.GetAllPosts()
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, second.ID, posts[0].ID)
	})

	t.Run("Delete twice", func(t *testing.T) {
		assert.ErrorIs(t, storage.DeletePostById(first.ID), post.ErrPostNotFound)
	})

	t.Run("Ids are not reused", func(t *testing.T) {
		require.NoError(t, storage.DeletePostById(second.ID))

		created, err := storage.CreatePost(ctx, model.PostInput{Title: "g", Content: "h", Author: "i"})
		require.NoError(t, err)
		assert.Equal(t, "3", created.ID)
	})
}
