package repositories

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for stored entities and indexes
	PostKeyPrefix          = "post:"
	PostCreatedIndexPrefix = "idx:post:created:"

	// Sequence key for auto-incrementing post IDs
	PostSeqKey = "seq:post"
)

var (
	ErrNotFound = errors.New("record not found")
)

// postKey encodes the id big-endian so lexical key order equals id order.
func postKey(id int64) []byte {
	key := make([]byte, 0, len(PostKeyPrefix)+8)
	key = append(key, PostKeyPrefix...)
	return binary.BigEndian.AppendUint64(key, uint64(id))
}

func idFromPostKey(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[len(PostKeyPrefix):]))
}

// createdIndexKey orders posts by creation time, then by id.
func createdIndexKey(createdAt time.Time, id int64) []byte {
	key := make([]byte, 0, len(PostCreatedIndexPrefix)+16)
	key = append(key, PostCreatedIndexPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(createdAt.UnixNano()))
	return binary.BigEndian.AppendUint64(key, uint64(id))
}

func idFromCreatedIndexKey(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// prefixEnd returns a seek key greater than every key under prefix, for
// reverse iteration.
func prefixEnd(prefix string) []byte {
	return append([]byte(prefix), bytes.Repeat([]byte{0xff}, 17)...)
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int64, error) {
	var id int64
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence value of %d bytes", len(val))
			}
			id = int64(binary.BigEndian.Uint64(val))
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	if err := txn.Set([]byte(seqKey), binary.BigEndian.AppendUint64(nil, uint64(id))); err != nil {
		return 0, fmt.Errorf("failed to update sequence: %w", err)
	}

	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
