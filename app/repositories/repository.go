package repositories

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Store owns a Badger database and the repositories built on it.
type Store struct {
	db     *badger.DB
	mutex  sync.RWMutex
	dbPath string
}

// OpenStore opens the Badger database at path. An empty path opens an
// in-memory database, which is what the tests use.
func OpenStore(path string) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.
		WithLogger(badgerLogger{}).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return &Store{
		db:     db,
		dbPath: path,
	}, nil
}

// Path is the directory the store was opened at, empty when in memory.
func (s *Store) Path() string {
	return s.dbPath
}

// DB exposes the underlying database handle.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Posts returns a post repository backed by this store.
func (s *Store) Posts() *BadgerPostRepository {
	return NewBadgerPostRepository(s.db)
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Close()
}

// Clear drops every key, including the id sequence.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

// Backup writes a full backup of the store to w and returns the version it
// covers.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	version, err := s.db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to backup database: %w", err)
	}
	return version, nil
}

// Restore loads a backup produced by Backup into the store.
func (s *Store) Restore(r io.Reader) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Load(r, 256); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// badgerLogger forwards Badger's warnings and errors to the standard logger
// and drops its chatter.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Printf("badger error: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Printf("badger warning: "+format, args...)
}

func (badgerLogger) Infof(string, ...interface{}) {}

func (badgerLogger) Debugf(string, ...interface{}) {}
