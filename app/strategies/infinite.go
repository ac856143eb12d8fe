package strategies

import (
	"context"
	"fmt"

	"strategyboard/app/models"
	"strategyboard/app/repositories"
)

const InfiniteScrollName = "infinite"

// InfiniteScroll serves cursor based batches keyed on post id. Ids are
// assigned in creation order, so id order doubles as recency.
type InfiniteScroll struct {
	repo repositories.PostRepository
}

func NewInfiniteScroll(repo repositories.PostRepository) *InfiniteScroll {
	return &InfiniteScroll{repo: repo}
}

func (s *InfiniteScroll) Name() string { return InfiniteScrollName }

func (s *InfiniteScroll) Load(ctx context.Context, req models.ListRequest) (*models.PageResponse, error) {
	if req.Size < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", req.Size)
	}

	var (
		posts []*models.Post
		err   error
	)
	if req.LastID == nil {
		posts, err = s.repo.ListLatest(ctx, req.Size)
	} else {
		posts, err = s.repo.ListBefore(ctx, *req.LastID, req.Size)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	resp := &models.PageResponse{
		Content: posts,
		Size:    req.Size,
		// A short batch means the end was reached.
		HasNext: len(posts) == req.Size,
	}
	if resp.HasNext && len(posts) > 0 {
		next := posts[len(posts)-1].ID
		resp.NextCursor = &next
	}
	return resp, nil
}
