package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/addconnect/internal/models"
)

var _ PreviewCache = (*MemoryCache)(nil)

type memoryEntry struct {
	preview models.Preview
	expires time.Time
}

// MemoryCache is used when REDIS_URL is unset and in tests
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *MemoryCache) Close() error {
	return nil
}

func (m *MemoryCache) GetPreview(ctx context.Context, hash string) (*models.Preview, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[hash]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.data, hash)
		return nil, false, nil
	}
	p := e.preview
	return &p, true, nil
}

// SetPreview stores a copy of p; ttl <= 0 means no expiry
func (m *MemoryCache) SetPreview(ctx context.Context, hash string, p *models.Preview, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{preview: *p}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.data[hash] = e
	return nil
}

func (m *MemoryCache) ClearPreviews(ctx context.Context) error {
	m.mu.Lock()
	m.data = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
