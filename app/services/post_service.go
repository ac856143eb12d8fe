package services

import (
	"context"
	"errors"
	"fmt"

	"strategyboard/app/models"
	"strategyboard/app/repositories"
	"strategyboard/app/strategies"
)

// Default list parameters applied to zero values.
const (
	DefaultStrategy = strategies.PaginationName
	DefaultPageSize = 10
)

// ErrValidation marks a request that failed parameter validation.
var ErrValidation = errors.New("validation failed")

// PostService handles business logic for bulletin-board posts
type PostService struct {
	postRepo   repositories.PostRepository
	strategies *strategies.Registry
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, registry *strategies.Registry) *PostService {
	return &PostService{
		postRepo:   postRepo,
		strategies: registry,
	}
}

// NewListRequest returns a request filled with the default parameters.
func NewListRequest() models.ListRequest {
	return models.ListRequest{
		Strategy: DefaultStrategy,
		Page:     0,
		Size:     DefaultPageSize,
	}
}

// ListPosts resolves the requested strategy and delegates the listing to it.
// An unknown strategy is reported before parameter validation.
func (s *PostService) ListPosts(ctx context.Context, req models.ListRequest) (*models.PageResponse, error) {
	if req.Strategy == "" {
		req.Strategy = DefaultStrategy
	}

	strategy, err := s.strategies.Get(req.Strategy)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, models.DescribeValidation(err))
	}

	return strategy.Load(ctx, req)
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// AvailableStrategies returns the registered strategy names, sorted.
func (s *PostService) AvailableStrategies() []string {
	return s.strategies.Names()
}
