package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"strategyboard/app/models"
	"strategyboard/app/repositories"
)

const DefaultSeedCount = 50

// Seeder fills an empty store with sample posts.
type Seeder struct {
	postRepo repositories.PostRepository
	now      func() time.Time
}

func NewSeeder(postRepo repositories.PostRepository) *Seeder {
	return &Seeder{
		postRepo: postRepo,
		now:      time.Now,
	}
}

// Seed creates n posts when the store is empty and reports how many were
// created. A store that already holds posts is left alone. Creation times
// increase one second per post, ending at the current time, so creation
// order and id order agree.
func (s *Seeder) Seed(ctx context.Context, n int) (int, error) {
	count, err := s.postRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	if count > 0 {
		log.Printf("Store already holds %d posts, skipping seed", count)
		return 0, nil
	}

	start := s.now().UTC().Truncate(time.Second).Add(-time.Duration(n) * time.Second)
	for i := 1; i <= n; i++ {
		post := &models.Post{
			Title: fmt.Sprintf("Strategy board sample post %d", i),
			Content: fmt.Sprintf("This is sample post number %d.\n\n"+
				"The board lists posts either page by page or as an infinite scroll, "+
				"and both views read from the same store.", i),
			Author:    fmt.Sprintf("author%d", i%10+1),
			CreatedAt: start.Add(time.Duration(i) * time.Second),
		}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return i - 1, fmt.Errorf("create sample post %d: %w", i, err)
		}
	}

	log.Printf("Seeded %d sample posts", n)
	return n, nil
}
