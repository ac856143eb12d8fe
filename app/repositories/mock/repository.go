package mock

import (
	"context"
	"sort"
	"sync"

	"strategyboard/app/models"
	"strategyboard/app/repositories"
)

// PostRepository is an in-memory repositories.PostRepository for tests.
type PostRepository struct {
	posts  map[int64]*models.Post
	nextID int64
	mutex  sync.RWMutex

	// Err, when set, is returned by every method.
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int64]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.posts = make(map[int64]*models.Post)
	m.nextID = 1
}

func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return err
	}
	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := m.sorted(func(a, b *models.Post) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return window(posts, offset, limit), nil
}

func (m *PostRepository) ListLatest(ctx context.Context, limit int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return window(m.byIDDesc(), 0, limit), nil
}

func (m *PostRepository) ListBefore(ctx context.Context, cursor int64, limit int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var before []*models.Post
	for _, post := range m.byIDDesc() {
		if post.ID < cursor {
			before = append(before, post)
		}
	}
	return window(before, 0, limit), nil
}

func (m *PostRepository) Count(ctx context.Context) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.posts)), nil
}

func (m *PostRepository) byIDDesc() []*models.Post {
	return m.sorted(func(a, b *models.Post) bool { return a.ID > b.ID })
}

func (m *PostRepository) sorted(less func(a, b *models.Post) bool) []*models.Post {
	posts := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
	return posts
}

func window(posts []*models.Post, offset, limit int) []*models.Post {
	if offset >= len(posts) || limit <= 0 {
		return []*models.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}
