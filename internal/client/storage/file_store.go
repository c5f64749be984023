package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/pkg/utils"
)

// FileStore keeps every key in a single JSON object on disk. Writes go through
// a temp file and rename. Every access re-reads the file so changes made by
// other processes are seen.
type FileStore struct {
	path string
	log  logrus.FieldLogger

	mu     sync.Mutex
	values map[string]string
}

func NewFileStore(dir string, log logrus.FieldLogger) (*FileStore, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if err := utils.MkdirAllWithOwnership(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &FileStore{
		path:   filepath.Join(dir, stateFile),
		log:    log.WithField("component", "storage"),
		values: map[string]string{},
	}

	s.mu.Lock()
	s.reloadLocked()
	s.mu.Unlock()
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reloadLocked()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reloadLocked()
	next := s.copyLocked()
	for k, v := range values {
		next[k] = v
	}
	return s.writeLocked(next)
}

func (s *FileStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reloadLocked()
	next := s.copyLocked()
	for _, k := range keys {
		delete(next, k)
	}
	return s.writeLocked(next)
}

func (s *FileStore) copyLocked() map[string]string {
	next := make(map[string]string, len(s.values))
	for k, v := range s.values {
		next[k] = v
	}
	return next
}

func (s *FileStore) writeLocked(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := utils.WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	s.values = values
	return nil
}

// reloadLocked re-reads the file. A missing or corrupt file yields an empty
// store.
func (s *FileStore) reloadLocked() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("Failed to read state file")
		}
		s.values = map[string]string{}
		return
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		s.log.WithError(err).Debug("State file is malformed, treating as empty")
		values = map[string]string{}
	}
	s.values = values
}
