package intake

import (
	"context"
	"strings"

	"github.com/bilgisen/addconnect/internal/models"
)

// URLValues are the user-typed fields of the URL form
type URLValues struct {
	URL  string
	Type string
	Tags string
}

type urlFields struct {
	URL  string `form:"url" validate:"required,url"`
	Type string `form:"type" validate:"required,oneof=trend technology inspiration"`
}

var urlMessages = map[string]string{
	"url":  msgEnterURL,
	"type": msgChooseType,
}

// URLForm imports a content item from a link, optionally enriched by a
// server-side preview. Preview and submit are independent operations.
type URLForm struct {
	machine
	backend Backend
	opts    Options
	values  URLValues

	preview        *models.Preview
	previewLoading int
	previewErr     error
}

func NewURLForm(backend Backend, opts Options) *URLForm {
	return &URLForm{backend: backend, opts: opts}
}

func (f *URLForm) Kind() models.SourceType { return models.SourceURL }

func (f *URLForm) Values() URLValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// SetValues replaces the input. With InvalidatePreviewOnEdit a changed URL
// drops the fetched preview.
func (f *URLForm) SetValues(v URLValues) {
	f.mu.Lock()
	if f.opts.InvalidatePreviewOnEdit && strings.TrimSpace(v.URL) != strings.TrimSpace(f.values.URL) {
		f.preview = nil
		f.previewErr = nil
	}
	f.values = v
	f.mu.Unlock()
}

// SetURL changes only the URL field
func (f *URLForm) SetURL(raw string) {
	v := f.Values()
	v.URL = raw
	f.SetValues(v)
}

// Preview returns the transient preview, or nil when none is loaded
func (f *URLForm) Preview() *models.Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// PreviewLoading reports whether a preview fetch is outstanding
func (f *URLForm) PreviewLoading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previewLoading > 0
}

// PreviewErr is the error of the last failed preview fetch
func (f *URLForm) PreviewErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previewErr
}

// FetchPreview loads link metadata for the current URL. A failure clears the
// preview and records an error but leaves the form usable.
func (f *URLForm) FetchPreview(ctx context.Context) error {
	f.mu.Lock()
	raw := strings.TrimSpace(f.values.URL)
	if raw == "" {
		f.mu.Unlock()
		verr := &ValidationError{}
		verr.add("url", msgEnterURL)
		return verr
	}
	f.previewLoading++
	f.preview = nil
	f.previewErr = nil
	f.mu.Unlock()

	p, err := f.backend.FetchPreview(ctx, raw)

	f.mu.Lock()
	f.previewLoading--
	if err != nil {
		f.preview = nil
		f.previewErr = err
		f.status = Status{Outcome: OutcomeFailed, Message: msgPreviewFail, Err: err}
	} else {
		f.preview = p
	}
	f.mu.Unlock()
	return err
}

func (f *URLForm) Validate() error {
	return asError(validateURL(f.Values()))
}

func validateURL(v URLValues) *ValidationError {
	return check(urlFields{
		URL:  strings.TrimSpace(v.URL),
		Type: strings.TrimSpace(v.Type),
	}, urlMessages)
}

// Submit posts the URL with whatever preview fields are loaded. Missing
// preview fields are sent as null.
func (f *URLForm) Submit(ctx context.Context) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	v := f.Values()
	if verr := validateURL(v); verr != nil {
		f.rejected(verr)
		return verr
	}

	f.transition(Submitting)
	p := f.Preview()
	if p == nil {
		p = &models.Preview{}
	}
	sub := models.ContentSubmission{
		Type:       models.ContentType(strings.TrimSpace(v.Type)),
		SourceType: models.SourceURL,
		SourceURL:  models.NullIfEmpty(strings.TrimSpace(v.URL)),
		Tags:       ParseTags(v.Tags),
		Title:      models.NullIfEmpty(models.Deref(p.Title)),
		Summary:    models.NullIfEmpty(models.Deref(p.Description)),
		Image:      models.NullIfEmpty(models.Deref(p.Image)),
		Site:       models.NullIfEmpty(models.Deref(p.Site)),
	}

	if _, err := f.backend.CreateContent(ctx, sub); err != nil {
		f.fail(models.SourceURL, msgImportFail, err)
		return err
	}

	f.clearInput()
	f.succeed(models.SourceURL, msgImported)
	return nil
}

func (f *URLForm) clearInput() {
	f.mu.Lock()
	f.values = URLValues{}
	f.preview = nil
	f.previewErr = nil
	f.mu.Unlock()
}

func (f *URLForm) Reset() {
	f.clearInput()
	f.clearOutcome()
}
