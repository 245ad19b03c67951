package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bilgisen/addconnect/internal/client"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	created []models.ContentSubmission
	uploads []client.UploadRequest
	preview *models.Preview
}

func (f *fakeBackend) CreateContent(ctx context.Context, sub models.ContentSubmission) (*models.Content, error) {
	f.created = append(f.created, sub)
	return &models.Content{ID: "c1"}, nil
}

func (f *fakeBackend) FetchPreview(ctx context.Context, rawURL string) (*models.Preview, error) {
	if f.preview == nil {
		return nil, client.ErrPreviewUnavailable
	}
	return f.preview, nil
}

func (f *fakeBackend) Upload(ctx context.Context, req client.UploadRequest, progress client.ProgressFunc) (*models.UploadResult, error) {
	f.uploads = append(f.uploads, req)
	progress(40)
	progress(100)
	return &models.UploadResult{OK: true, Filename: req.FileName}, nil
}

func run(t *testing.T, fb *fakeBackend, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1")

	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut, fb)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestManualCmd(t *testing.T) {
	fb := &fakeBackend{}
	out, _, err := run(t, fb, "manual",
		"--type", "trend",
		"--title", "Circular fashion",
		"--summary", "Resale becomes a default channel",
		"--tags", "retail, textiles, ",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Content saved")

	require.Len(t, fb.created, 1)
	sub := fb.created[0]
	assert.Equal(t, models.TypeTrend, sub.Type)
	assert.Equal(t, models.SourceManual, sub.SourceType)
	assert.Equal(t, []string{"retail", "textiles"}, sub.Tags)
	assert.Nil(t, sub.SourceURL)
}

func TestManualCmd_ValidationErrors(t *testing.T) {
	fb := &fakeBackend{}
	_, errOut, err := run(t, fb, "manual", "--title", "ab", "--summary", "short")
	require.ErrorIs(t, err, errValidation)

	assert.Contains(t, errOut, "type: Please choose a content type")
	assert.Contains(t, errOut, "title: At least 3 characters")
	assert.Contains(t, errOut, "summary: At least 10 characters")
	assert.Empty(t, fb.created)
}

func TestURLCmd_PreviewFailureStillImports(t *testing.T) {
	fb := &fakeBackend{}
	out, errOut, err := run(t, fb, "url", "https://example.com/post", "--type", "technology", "--preview")
	require.NoError(t, err)

	assert.Contains(t, errOut, "Could not load preview")
	assert.Contains(t, out, "Content imported")
	require.Len(t, fb.created, 1)
	assert.Nil(t, fb.created[0].Title)
	assert.Equal(t, "https://example.com/post", models.Deref(fb.created[0].SourceURL))
}

func TestURLCmd_WithPreview(t *testing.T) {
	title := "Post title"
	fb := &fakeBackend{preview: &models.Preview{Title: &title}}
	_, errOut, err := run(t, fb, "url", "https://example.com/post", "--type", "trend", "--preview")
	require.NoError(t, err)

	assert.Contains(t, errOut, "Preview: Post title")
	require.Len(t, fb.created, 1)
	assert.Equal(t, "Post title", models.Deref(fb.created[0].Title))
}

func TestPreviewCmd(t *testing.T) {
	title := "Hello"
	fb := &fakeBackend{preview: &models.Preview{Title: &title}}
	out, _, err := run(t, fb, "preview", "https://example.com")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Hello","description":null,"image":null,"site":null}`, out)
}

func TestFileCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodboard.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	fb := &fakeBackend{}
	out, errOut, err := run(t, fb, "file", "file://"+path, "--type", "inspiration", "--title", "Moodboard")
	require.NoError(t, err)

	assert.Contains(t, out, "File uploaded")
	assert.Contains(t, errOut, "100%")
	require.Len(t, fb.uploads, 1)
	assert.Equal(t, "moodboard.png", fb.uploads[0].FileName)
	assert.Equal(t, "Moodboard", fb.uploads[0].Title)
}

func TestFileCmd_MissingFile(t *testing.T) {
	fb := &fakeBackend{}
	_, errOut, err := run(t, fb, "file", filepath.Join(t.TempDir(), "nope.pdf"), "--type", "trend", "--title", "Nope")
	require.ErrorIs(t, err, errValidation)
	assert.Contains(t, errOut, "file: cannot read nope.pdf")
	assert.Empty(t, fb.uploads)
}

func TestFileCmd_PathWithSpace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site plan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

	fb := &fakeBackend{}
	out, _, err := run(t, fb, "file", path, "--type", "trend", "--title", "Site plan")
	require.NoError(t, err)

	assert.Contains(t, out, "File uploaded")
	require.Len(t, fb.uploads, 1)
	assert.Equal(t, "site plan.pdf", fb.uploads[0].FileName)
}

func TestAPIBaseFlagBeatsBrokenEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "not a url")
	t.Setenv("BLOB_BACKEND", "ftp")
	t.Setenv("MAX_FILE_SIZE", "-1")

	var out, errOut bytes.Buffer
	fb := &fakeBackend{}
	root := newRootCmd(&out, &errOut, fb)
	root.SetArgs([]string{"--api-base", "http://127.0.0.1:1",
		"manual", "--type", "trend", "--title", "Circular fashion", "--summary", "Resale becomes a default channel"})
	root.SetOut(&out)
	root.SetErr(&errOut)

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Content saved")
	assert.Len(t, fb.created, 1)
}

func TestInvalidAPIBaseFlag(t *testing.T) {
	_, _, err := run(t, &fakeBackend{}, "--api-base", "not a url", "manual")
	assert.Error(t, err)
}
