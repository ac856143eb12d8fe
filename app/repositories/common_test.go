package repositories

import (
	"testing"
	"time"

	"strategyboard/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetNextID(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	assert.NoError(t, err)
	defer db.Close()

	t.Run("first ID", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, int64(1), id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("sequential IDs", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			for i := int64(2); i <= 5; i++ {
				id, err := getNextID(txn, PostSeqKey)
				assert.NoError(t, err)
				assert.Equal(t, i, id)
			}
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("persistence", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, int64(1), id)
			return nil
		})
		assert.NoError(t, err)

		// Second transaction should continue from last ID
		err = db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, int64(2), id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("corrupt sequence", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			if err := txn.Set([]byte("bad:seq"), []byte{1, 2}); err != nil {
				return err
			}
			_, err := getNextID(txn, "bad:seq")
			return err
		})
		assert.Error(t, err)
	})
}

func TestKeyEncoding(t *testing.T) {
	t.Run("post keys sort by id", func(t *testing.T) {
		assert.Less(t, string(postKey(9)), string(postKey(10)))
		assert.Less(t, string(postKey(255)), string(postKey(256)))
		assert.Equal(t, int64(300), idFromPostKey(postKey(300)))
	})

	t.Run("index keys sort by time then id", func(t *testing.T) {
		early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		late := early.Add(time.Nanosecond)

		assert.Less(t, string(createdIndexKey(early, 99)), string(createdIndexKey(late, 1)))
		assert.Less(t, string(createdIndexKey(early, 1)), string(createdIndexKey(early, 2)))
		assert.Equal(t, int64(42), idFromCreatedIndexKey(createdIndexKey(late, 42)))
	})

	t.Run("prefix end sorts after every key", func(t *testing.T) {
		assert.Less(t, string(postKey(1<<62)), string(prefixEnd(PostKeyPrefix)))
	})
}

func TestMarshalEntity(t *testing.T) {
	t.Run("marshal post", func(t *testing.T) {
		post := &models.Post{
			ID:      1,
			Title:   "Test Post",
			Content: "Test Content",
			Author:  "author1",
		}

		data, err := marshalEntity(post)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `"createdAt"`)

		var unmarshaled models.Post
		err = unmarshalEntity(data, &unmarshaled)
		assert.NoError(t, err)
		assert.Equal(t, *post, unmarshaled)
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		invalidEntity := struct {
			Ch chan int
		}{
			Ch: make(chan int),
		}

		_, err := marshalEntity(invalidEntity)
		assert.Error(t, err)
	})

	t.Run("unmarshal invalid JSON", func(t *testing.T) {
		var post models.Post
		err := unmarshalEntity([]byte(`{"id":1,invalid json}`), &post)
		assert.Error(t, err)
	})
}
