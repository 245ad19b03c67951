package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bilgisen/addconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(id, title string, typ models.ContentType, status models.Status, at time.Time) *models.Content {
	return &models.Content{
		ID:          id,
		Title:       title,
		ContentType: typ,
		SourceType:  models.SourceManual,
		Tags:        []string{},
		Status:      status,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestStorage_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	rec := newRecord("a1", "Solid state batteries", models.TypeTechnology, models.StatusDraft, at)
	require.NoError(t, s.SaveContent(ctx, rec))

	matches, _ := filepath.Glob(filepath.Join(s.root(), "2024", "03", "09", "*_a1.json"))
	assert.Len(t, matches, 1)

	got, err := s.GetContent(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Solid state batteries", got.Title)
	assert.True(t, at.Equal(got.CreatedAt))

	_, err = s.GetContent(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetContent(ctx, "../a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveContent(ctx, newRecord("1", "Old trend", models.TypeTrend, models.StatusApproved, base)))
	require.NoError(t, s.SaveContent(ctx, newRecord("2", "New trend", models.TypeTrend, models.StatusApproved, base.Add(48*time.Hour))))
	require.NoError(t, s.SaveContent(ctx, newRecord("3", "Draft tech", models.TypeTechnology, models.StatusDraft, base.Add(time.Hour))))

	all, err := s.ListContents(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	trends, err := s.ListContents(ctx, Filter{Type: models.TypeTrend, Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Len(t, trends, 2)

	found, err := s.ListContents(ctx, Filter{Search: "DRAFT"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "3", found[0].ID)
}

func TestStorage_DeleteAndStats(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, s.SaveContent(ctx, newRecord("t", "Trend", models.TypeTrend, models.StatusDraft, now)))
	require.NoError(t, s.SaveContent(ctx, newRecord("i", "Inspiration", models.TypeInspiration, models.StatusDraft, now)))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalContents: 2, Trends: 1, Inspirations: 1}, *st)

	removed, err := s.DeleteContent(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "Trend", removed.Title)

	_, err = s.DeleteContent(ctx, "t")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalContents)
}

func TestStorage_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			assert.NoError(t, s.SaveContent(ctx, newRecord(id, "x", models.TypeTrend, models.StatusDraft, time.Now())))
		}(i)
	}
	wg.Wait()

	all, err := s.ListContents(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "passwd"},
		{`C:\Users\me\notes.txt`, "notes.txt"},
		{"i contain cool \xc3\xbcml\xc3\xa4uts.txt", "i_contain_cool_umlauts.txt"},
		{"..", ""},
		{"   ", ""},
		{"con.txt", "_con.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestLocalBlobStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	b, err := NewLocalBlobStore(dir)
	require.NoError(t, err)

	loc, err := b.Put(ctx, "deck.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "deck.pdf"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = b.Put(ctx, "../escape", strings.NewReader("x"), 1, "")
	assert.Error(t, err)

	require.NoError(t, b.Delete(ctx, loc))
	assert.NoFileExists(t, loc)
	assert.Error(t, b.Delete(ctx, "/etc/passwd"))
}

func TestS3BlobStore_PathStyleEndpoint(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, data
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))

	ctx := context.Background()
	b, err := NewS3BlobStore(ctx, S3Config{
		Endpoint:  srv.URL,
		Bucket:    "intake",
		AccessKey: "key",
		SecretKey: "secret",
		KeyPrefix: "uploads/",
	})
	require.NoError(t, err)

	payload := []byte("hello blob")
	loc, err := b.Put(ctx, "a.txt", bytes.NewReader(payload), int64(len(payload)), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "s3://intake/uploads/a.txt", loc)

	mu.Lock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/intake/uploads/a.txt", path)
	assert.Equal(t, payload, body)
	mu.Unlock()

	require.NoError(t, b.Delete(ctx, loc))
	mu.Lock()
	assert.Equal(t, http.MethodDelete, method)
	mu.Unlock()

	assert.Error(t, b.Delete(ctx, "s3://other/a.txt"))
}
