package strategies

import (
	"context"
	"fmt"

	"strategyboard/app/models"
	"strategyboard/app/repositories"
)

const PaginationName = "pagination"

// Pagination serves zero-indexed pages ordered by creation time, newest
// first, with enough totals for a client to render page links.
type Pagination struct {
	repo repositories.PostRepository
}

func NewPagination(repo repositories.PostRepository) *Pagination {
	return &Pagination{repo: repo}
}

func (p *Pagination) Name() string { return PaginationName }

func (p *Pagination) Load(ctx context.Context, req models.ListRequest) (*models.PageResponse, error) {
	if req.Size < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", req.Size)
	}

	total, err := p.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	totalPages := int((total + int64(req.Size) - 1) / int64(req.Size))

	posts := []*models.Post{}
	// Pages past the end are empty; skipping the query also keeps
	// page*size from overflowing.
	if req.Page < totalPages {
		posts, err = p.repo.ListRecent(ctx, req.Size, req.Page*req.Size)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
	}

	page := req.Page
	first := page == 0
	last := page >= totalPages-1
	return &models.PageResponse{
		Content:       posts,
		Page:          &page,
		Size:          req.Size,
		TotalElements: &total,
		TotalPages:    &totalPages,
		First:         &first,
		Last:          &last,
		HasNext:       page < totalPages-1,
	}, nil
}
