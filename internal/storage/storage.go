package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bilgisen/addconnect/internal/models"
)

// ErrNotFound is returned when no record has the requested ID
var ErrNotFound = errors.New("content not found")

// Filter narrows ListContents. Empty fields match everything.
type Filter struct {
	Type   models.ContentType
	Status models.Status
	Search string
}

// Storage keeps content records as JSON files under contents/YYYY/MM/DD
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

func NewStorage(basePath string) (*Storage, error) {
	contentsPath := filepath.Join(basePath, "contents")
	if err := os.MkdirAll(contentsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

func (s *Storage) root() string {
	return filepath.Join(s.basePath, "contents")
}

// SaveContent writes a new record. The file name carries the creation time
// and ID so lookups do not need to decode every file.
func (s *Storage) SaveContent(ctx context.Context, item *models.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.ID == "" {
		return errors.New("content id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	datePath := filepath.Join(s.root(), item.CreatedAt.UTC().Format("2006/01/02"))
	if err := os.MkdirAll(datePath, 0755); err != nil {
		return fmt.Errorf("failed to create date directory: %w", err)
	}

	filename := fmt.Sprintf("%d_%s.json", item.CreatedAt.UnixNano(), item.ID)
	filePath := filepath.Join(datePath, filename)

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	// Write then rename so readers never see a partial record
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write content file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write content file: %w", err)
	}

	return nil
}

// GetContent retrieves a record by its ID
func (s *Storage) GetContent(ctx context.Context, id string) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return readRecord(path)
}

func (s *Storage) find(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", ErrNotFound
	}
	suffix := "_" + id + ".json"

	var found string
	err := filepath.WalkDir(s.root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error walking the path: %w", err)
	}
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}

func readRecord(path string) (*models.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var item models.Content
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content %s: %w", path, err)
	}
	return &item, nil
}

func (s *Storage) all() ([]*models.Content, error) {
	var items []*models.Content
	err := filepath.WalkDir(s.root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		item, err := readRecord(path)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path: %w", err)
	}
	return items, nil
}

// ListContents returns matching records, newest first. Search is a
// case-insensitive substring match on title and summary.
func (s *Storage) ListContents(ctx context.Context, f Filter) ([]*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	items, err := s.all()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*models.Content, 0, len(items))
	for _, item := range items {
		if f.Type != "" && item.ContentType != f.Type {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Title), search) &&
			!strings.Contains(strings.ToLower(item.Summary), search) {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteContent removes a record and returns it so callers can clean up blobs
func (s *Storage) DeleteContent(ctx context.Context, id string) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	item, err := readRecord(path)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to delete content file: %w", err)
	}
	return item, nil
}

// Stats counts records per content type across all statuses
func (s *Storage) Stats(ctx context.Context) (*models.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	items, err := s.all()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	st := &models.Stats{TotalContents: len(items)}
	for _, item := range items {
		switch item.ContentType {
		case models.TypeTrend:
			st.Trends++
		case models.TypeTechnology:
			st.Technologies++
		case models.TypeInspiration:
			st.Inspirations++
		}
	}
	return st, nil
}
