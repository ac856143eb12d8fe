package services

import (
	"context"
	"errors"
	"testing"

	"strategyboard/app/models"
	"strategyboard/app/repositories"
	"strategyboard/app/repositories/mock"
	"strategyboard/app/strategies"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, n int) (*PostService, *mock.PostRepository) {
	repo := mock.NewPostRepository()
	_, err := NewSeeder(repo).Seed(context.Background(), n)
	require.NoError(t, err)
	return NewPostService(repo, strategies.NewDefaultRegistry(repo)), repo
}

func TestPostService(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, 50)

	t.Run("get post", func(t *testing.T) {
		post, err := service.GetPost(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), post.ID)
		assert.Equal(t, "Strategy board sample post 7", post.Title)
		assert.Equal(t, "author8", post.Author)
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := service.GetPost(ctx, 51)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("list with defaults", func(t *testing.T) {
		resp, err := service.ListPosts(ctx, NewListRequest())
		require.NoError(t, err)
		assert.Len(t, resp.Content, DefaultPageSize)
		assert.Equal(t, int64(50), *resp.TotalElements)
		assert.Equal(t, 5, *resp.TotalPages)
	})

	t.Run("empty strategy falls back to pagination", func(t *testing.T) {
		resp, err := service.ListPosts(ctx, models.ListRequest{Size: 5})
		require.NoError(t, err)
		require.NotNil(t, resp.TotalPages)
		assert.Equal(t, 10, *resp.TotalPages)
	})

	t.Run("infinite scroll", func(t *testing.T) {
		resp, err := service.ListPosts(ctx, models.ListRequest{Strategy: "infinite", Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(50), resp.Content[0].ID)
		assert.Equal(t, int64(41), *resp.NextCursor)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := service.ListPosts(ctx, models.ListRequest{Strategy: "random", Size: 10})
		assert.ErrorIs(t, err, strategies.ErrUnsupportedStrategy)
	})

	t.Run("unknown strategy wins over invalid parameters", func(t *testing.T) {
		_, err := service.ListPosts(ctx, models.ListRequest{Strategy: "random", Page: -1, Size: 0})
		assert.ErrorIs(t, err, strategies.ErrUnsupportedStrategy)
		assert.False(t, errors.Is(err, ErrValidation))
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name    string
			req     models.ListRequest
			message string
		}{
			{"negative page", models.ListRequest{Strategy: "pagination", Page: -1, Size: 10}, "page must be at least 0"},
			{"zero size", models.ListRequest{Strategy: "pagination", Size: 0}, "size must be at least 1"},
			{"size too large", models.ListRequest{Strategy: "infinite", Size: 101}, "size must be at most 100"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := service.ListPosts(ctx, tt.req)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), tt.message)
			})
		}
	})

	t.Run("available strategies", func(t *testing.T) {
		assert.Equal(t, []string{"infinite", "pagination"}, service.AvailableStrategies())
	})
}
