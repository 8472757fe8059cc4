package memory

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"rentListings/internal/storage"
)

type blob struct {
	contentType string
	data        []byte
}

// ImageStore keeps uploaded blobs in process memory.
type ImageStore struct {
	mu        sync.RWMutex
	blobs     map[string]blob
	publicURL string
}

func NewImageStore(publicURL string) *ImageStore {
	return &ImageStore{
		blobs:     make(map[string]blob),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *ImageStore) Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.blobs[path] = blob{contentType: contentType, data: data}
	s.mu.Unlock()

	return s.publicURL + "/images/" + path, nil
}

func (s *ImageStore) Open(_ context.Context, path string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	b, ok := s.blobs[path]
	s.mu.RUnlock()

	if !ok {
		return nil, "", storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.contentType, nil
}

func (s *ImageStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	delete(s.blobs, path)
	s.mu.Unlock()
	return nil
}

// Paths lists the stored blob paths.
func (s *ImageStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.blobs))
	for p := range s.blobs {
		paths = append(paths, p)
	}
	return paths
}
