package preview

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bilgisen/addconnect/internal/cache"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ogPage = `<!doctype html>
<html><head>
<title>Fallback   Title</title>
<meta property="og:title" content="Rust &amp; Go">
<meta property="og:title" content="Second title">
<meta property="og:description" content="  A   look at
systems languages ">
<meta property="og:image" content="https://example.com/cover.png">
<meta property="og:site_name" content="Example">
</head><body></body></html>`

func TestParseMeta_OpenGraph(t *testing.T) {
	p, err := ParseMeta(strings.NewReader(ogPage))
	require.NoError(t, err)

	assert.Equal(t, "Rust & Go", models.Deref(p.Title))
	assert.Equal(t, "A look at systems languages", models.Deref(p.Description))
	assert.Equal(t, "https://example.com/cover.png", models.Deref(p.Image))
	assert.Equal(t, "Example", models.Deref(p.Site))
	assert.Empty(t, p.Error)
}

func TestParseMeta_Fallbacks(t *testing.T) {
	page := `<html><head>
<title>Plain page</title>
<meta name="description" content="Described by name">
</head><body><svg><title>icon</title></svg></body></html>`

	p, err := ParseMeta(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Plain page", models.Deref(p.Title))
	assert.Equal(t, "Described by name", models.Deref(p.Description))
	assert.Nil(t, p.Image)
	assert.Nil(t, p.Site)
}

func TestParseMeta_Empty(t *testing.T) {
	p, err := ParseMeta(strings.NewReader("<html><body>nothing</body></html>"))
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestValidURL(t *testing.T) {
	assert.True(t, ValidURL("https://example.com"))
	assert.True(t, ValidURL(" http://example.com/a "))
	assert.False(t, ValidURL("ftp://example.com"))
	assert.False(t, ValidURL("example.com"))
	assert.False(t, ValidURL(""))
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.UserAgent(), "AddConnect")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ogPage))
	}))
	defer srv.Close()

	p := NewFetcher(2*time.Second).Fetch(context.Background(), srv.URL)
	assert.Empty(t, p.Error)
	assert.Equal(t, "Rust & Go", models.Deref(p.Title))
}

func TestFetcher_FailureIsReportedInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewFetcher(2*time.Second).Fetch(context.Background(), srv.URL)
	assert.NotEmpty(t, p.Error)
	assert.True(t, p.Empty())
}

func TestFetcher_ReadsOnlyThePageHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><head><title>Huge page</title></head><body><p>`)
		chunk := strings.Repeat("x", 64<<10)
		for i := 0; i < 128; i++ {
			if _, err := io.WriteString(w, chunk); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	p := NewFetcher(5*time.Second).Fetch(context.Background(), srv.URL)
	assert.Empty(t, p.Error)
	assert.Equal(t, "Huge page", models.Deref(p.Title))
}

type countingSource struct {
	calls atomic.Int32
	p     models.Preview
}

func (s *countingSource) Fetch(ctx context.Context, url string) *models.Preview {
	s.calls.Add(1)
	p := s.p
	return &p
}

func TestService_CachesSuccess(t *testing.T) {
	title := "Cached"
	src := &countingSource{p: models.Preview{Title: &title}}
	svc := NewService(src, cache.NewMemoryCache(), time.Hour)

	for i := 0; i < 3; i++ {
		p := svc.Get(context.Background(), "https://example.com")
		assert.Equal(t, "Cached", models.Deref(p.Title))
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestService_Clear(t *testing.T) {
	title := "Cached"
	src := &countingSource{p: models.Preview{Title: &title}}
	svc := NewService(src, cache.NewMemoryCache(), time.Hour)

	svc.Get(context.Background(), "https://example.com")
	require.NoError(t, svc.Clear(context.Background()))
	svc.Get(context.Background(), "https://example.com")
	assert.Equal(t, int32(2), src.calls.Load())

	assert.NoError(t, NewService(src, nil, time.Hour).Clear(context.Background()))
}

func TestService_DoesNotCacheFailure(t *testing.T) {
	src := &countingSource{p: models.Preview{Error: "boom"}}
	svc := NewService(src, cache.NewMemoryCache(), time.Hour)

	svc.Get(context.Background(), "https://example.com")
	p := svc.Get(context.Background(), "https://example.com")
	assert.Equal(t, "boom", p.Error)
	assert.Equal(t, int32(2), src.calls.Load())
}
