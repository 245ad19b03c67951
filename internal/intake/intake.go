// Package intake implements the Add & Connect submission workflow: three
// forms (manual, URL, file) that validate client-side and submit to the
// content backend.
package intake

import (
	"context"

	"github.com/bilgisen/addconnect/internal/client"
	"github.com/bilgisen/addconnect/internal/models"
)

// Backend is the HTTP collaborator the forms submit to. *client.Client
// satisfies it.
type Backend interface {
	CreateContent(ctx context.Context, sub models.ContentSubmission) (*models.Content, error)
	FetchPreview(ctx context.Context, rawURL string) (*models.Preview, error)
	Upload(ctx context.Context, req client.UploadRequest, progress client.ProgressFunc) (*models.UploadResult, error)
}

var _ Backend = (*client.Client)(nil)

// Options tune form behaviour
type Options struct {
	// InvalidatePreviewOnEdit drops a fetched preview when the URL changes.
	// Off by default: a stale preview is submitted as-is.
	InvalidatePreviewOnEdit bool
}

const (
	msgChooseType  = "Please choose a content type"
	msgMin3        = "At least 3 characters"
	msgMin10       = "At least 10 characters"
	msgInvalidURL  = "Invalid URL"
	msgEnterURL    = "Please enter a valid URL"
	msgChooseFile  = "Please choose a file"
	msgSaved       = "Content saved"
	msgSaveFailed  = "Saving failed"
	msgImported    = "Content imported"
	msgImportFail  = "Import failed"
	msgUploaded    = "File uploaded"
	msgUploadFail  = "Upload failed"
	msgPreviewFail = "Could not load preview"
)

// Page is the tabbed Add & Connect surface. The active kind selects which
// form a single render path works with.
type Page struct {
	Manual *ManualForm
	URL    *URLForm
	File   *FileForm

	active models.SourceType
}

// NewPage builds the three forms against one backend
func NewPage(backend Backend, opts Options) *Page {
	return &Page{
		Manual: NewManualForm(backend),
		URL:    NewURLForm(backend, opts),
		File:   NewFileForm(backend),
		active: models.SourceManual,
	}
}

// Active returns the form of the selected tab
func (p *Page) Active() Form {
	switch p.active {
	case models.SourceURL:
		return p.URL
	case models.SourceFile:
		return p.File
	}
	return p.Manual
}

// ActiveKind returns the selected tab
func (p *Page) ActiveKind() models.SourceType {
	return p.active
}

// Switch selects a tab. Unknown kinds fall back to manual.
func (p *Page) Switch(kind models.SourceType) {
	switch kind {
	case models.SourceURL, models.SourceFile:
		p.active = kind
	default:
		p.active = models.SourceManual
	}
}

// Kinds lists the tabs in display order
func Kinds() []models.SourceType {
	return []models.SourceType{models.SourceManual, models.SourceURL, models.SourceFile}
}
