package repositories

import (
	"context"
	"errors"
	"fmt"

	"strategyboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post together with its creation-time index entry.
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}

		if err := txn.Set(postKey(post.ID), data); err != nil {
			return err
		}
		return txn.Set(createdIndexKey(post.CreatedAt, post.ID), nil)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListRecent walks the creation-time index backwards.
func (r *BadgerPostRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, max(limit, 0))
	if limit <= 0 {
		return posts, nil
	}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		opts.Prefix = []byte(PostCreatedIndexPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		skipped := 0
		for it.Seek(prefixEnd(PostCreatedIndexPrefix)); it.Valid(); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if len(posts) >= limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			post, err := getPost(txn, idFromCreatedIndexKey(it.Item().Key()))
			if err != nil {
				return fmt.Errorf("failed to load indexed post: %w", err)
			}
			posts = append(posts, post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListLatest returns the newest posts by id.
func (r *BadgerPostRepository) ListLatest(ctx context.Context, limit int) ([]*models.Post, error) {
	return r.listDescending(ctx, prefixEnd(PostKeyPrefix), limit)
}

// ListBefore returns posts whose id is strictly less than cursor.
func (r *BadgerPostRepository) ListBefore(ctx context.Context, cursor int64, limit int) ([]*models.Post, error) {
	if cursor <= 1 {
		return []*models.Post{}, nil
	}
	return r.listDescending(ctx, postKey(cursor-1), limit)
}

func (r *BadgerPostRepository) listDescending(ctx context.Context, seek []byte, limit int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, max(limit, 0))
	if limit <= 0 {
		return posts, nil
	}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchSize = limit
		opts.Prefix = []byte(PostKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seek); it.Valid() && len(posts) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of stored posts.
func (r *BadgerPostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(PostKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func getPost(txn *badger.Txn, id int64) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	return &post, nil
}
