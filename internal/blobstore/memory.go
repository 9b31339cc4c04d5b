package blobstore

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Blob struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps uploads in process. URLs are derived the same way as for the Firebase bucket.
type MemoryStore struct {
	mu         sync.RWMutex
	bucketName string
	blobs      map[string]Blob
}

var _ Store = (*MemoryStore)(nil)

func NewMemory(bucketName string) *MemoryStore {
	return &MemoryStore{
		bucketName: bucketName,
		blobs:      make(map[string]Blob),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("put object: %w, key: %s", err, key)
	}

	s.mu.Lock()
	s.blobs[key] = Blob{ContentType: contentType, Data: data}
	s.mu.Unlock()

	return PublicURL(s.bucketName, key), nil
}

func (s *MemoryStore) Get(key string) (Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	return blob, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
