package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type fileEntry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

type fileCacheData struct {
	Entries map[string]fileEntry `json:"entries"`
}

// FileStore keeps every entry in one JSON file, rewritten atomically on each
// change. Suited to single-process local use.
type FileStore struct {
	filePath string
	data     *fileCacheData
	now      func() time.Time
	mu       sync.RWMutex
}

// NewFileStore opens (or creates) the cache file at filePath
func NewFileStore(filePath string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	log.Printf("[CACHE] Using cache file: %s", filePath)

	s := &FileStore{
		filePath: filePath,
		data:     &fileCacheData{Entries: map[string]fileEntry{}},
		now:      time.Now,
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return s.saveUnlocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	if err := json.Unmarshal(data, s.data); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}
	if s.data.Entries == nil {
		s.data.Entries = map[string]fileEntry{}
	}

	expired := 0
	now := s.now()
	for key, e := range s.data.Entries {
		if !e.ExpiresAt.After(now) {
			delete(s.data.Entries, key)
			expired++
		}
	}

	log.Printf("[CACHE] Loaded cache file: entries=%d expired=%d", len(s.data.Entries), expired)
	return nil
}

func (s *FileStore) saveUnlocked() error {
	data, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data.Entries[key]
	if !ok || !e.ExpiresAt.After(s.now()) {
		return nil, false, nil
	}
	// callers must not alias the stored slice
	value := make([]byte, len(e.Value))
	copy(value, e.Value)
	return value, true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data.Entries[key] = fileEntry{Value: stored, ExpiresAt: s.now().Add(ttl)}
	return s.saveUnlocked()
}

func (s *FileStore) ClearByPrefix(ctx context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	p := KeyPrefix(prefix)
	for key := range s.data.Entries {
		if strings.HasPrefix(key, p) {
			delete(s.data.Entries, key)
			deleted++
		}
	}
	if deleted == 0 {
		return 0, nil
	}
	return deleted, s.saveUnlocked()
}
