package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/addconnect/internal/models"
	"github.com/bilgisen/addconnect/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBlobs struct {
	data    map[string]string
	failPut bool
}

func (m *memBlobs) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if m.failPut {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	loc := "mem://" + key
	m.data[loc] = string(b)
	return loc, nil
}

func (m *memBlobs) Delete(ctx context.Context, location string) error {
	delete(m.data, location)
	return nil
}

func newTestService(t *testing.T) (*ContentService, *memBlobs) {
	t.Helper()
	store, err := storage.NewStorage(t.TempDir())
	require.NoError(t, err)
	blobs := &memBlobs{data: map[string]string{}}

	svc := NewContentService(store, blobs)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, blobs
}

func ptr(s string) *string { return &s }

func TestCreate_NormalizesSubmission(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Create(context.Background(), &models.ContentSubmission{
		Type:       " Technology ",
		Title:      ptr("  Quantum\tsensing "),
		Summary:    ptr("Line one\nline two"),
		Tags:       []string{" ai ", "", "edge"},
		SourceType: models.SourceManual,
		Image:      ptr("https://example.com/i.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, models.TypeTechnology, got.ContentType)
	assert.Equal(t, "Quantum sensing", got.Title)
	assert.Equal(t, "Line one line two", got.Summary)
	assert.Equal(t, []string{"ai", "edge"}, got.Tags)
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.Equal(t, "https://example.com/i.png", got.ImageURL)

	stored, err := svc.Get(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, got.Title, stored.Title)
}

func TestCreate_URLWithoutPreview(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Create(context.Background(), &models.ContentSubmission{
		Type:       models.TypeTrend,
		SourceURL:  ptr("https://example.com/post"),
		SourceType: models.SourceURL,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/post", got.Title)
	assert.Empty(t, got.Summary)
	assert.Equal(t, []string{}, got.Tags)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.ContentSubmission{Type: "gossip", Title: ptr("abc")})
	require.Error(t, err)
	assert.True(t, IsInputError(err))
	assert.Contains(t, err.Error(), "inspiration, technology, trend")

	_, err = svc.Create(ctx, &models.ContentSubmission{Type: models.TypeTrend, Status: "published"})
	assert.True(t, IsInputError(err))

	_, err = svc.Create(ctx, &models.ContentSubmission{Type: models.TypeTrend, SourceType: "fax"})
	assert.True(t, IsInputError(err))
}

func TestUpload(t *testing.T) {
	svc, blobs := newTestService(t)

	res, err := svc.Upload(context.Background(), UploadRequest{
		File:     strings.NewReader("slides"),
		Filename: "../Q3 review.pdf",
		Size:     6,
		MIMEType: "application/pdf",
		Type:     "inspiration",
		Tags:     `["design", " "]`,
	})
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, "Q3_review.pdf", res.Filename)
	assert.Equal(t, "Q3_review.pdf", res.Content.Title)
	assert.Equal(t, []string{"design"}, res.Content.Tags)
	assert.Equal(t, models.SourceFile, res.Content.SourceType)
	assert.Empty(t, res.Content.ImageURL)
	assert.Equal(t, "slides", blobs.data[res.Content.FilePath])
}

func TestUpload_Validation(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	cases := map[string]UploadRequest{
		"empty filename": {Filename: " ", Type: "trend"},
		"bad type":       {Filename: "a.txt", Type: "news"},
		"bad tags":       {Filename: "a.txt", Type: "trend", Tags: "a,b"},
		"unsafe name":    {Filename: "..", Type: "trend"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			req.File = strings.NewReader("x")
			_, err := svc.Upload(ctx, req)
			require.Error(t, err)
			assert.True(t, IsInputError(err))
		})
	}
	assert.Empty(t, blobs.data)
}

func TestUpload_BlobFailure(t *testing.T) {
	svc, blobs := newTestService(t)
	blobs.failPut = true

	_, err := svc.Upload(context.Background(), UploadRequest{
		File: strings.NewReader("x"), Filename: "a.txt", Type: "trend",
	})
	require.Error(t, err)
	assert.False(t, IsInputError(err))

	all, err := svc.List(context.Background(), storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete_RemovesBlob(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, UploadRequest{
		File: strings.NewReader("img"), Filename: "cat.png", MIMEType: "image/png", Type: "trend",
	})
	require.NoError(t, err)
	assert.Equal(t, res.Content.FilePath, res.Content.ImageURL)

	require.NoError(t, svc.Delete(ctx, res.Content.ID))
	assert.Empty(t, blobs.data)

	assert.ErrorIs(t, svc.Delete(ctx, res.Content.ID), ErrNotFound)
}
