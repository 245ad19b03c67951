package intake

import (
	"context"
	"strings"

	"github.com/bilgisen/addconnect/internal/models"
)

// ManualValues are the user-typed fields of the manual form
type ManualValues struct {
	Type      string
	Title     string
	Summary   string
	SourceURL string
	Tags      string
}

type manualFields struct {
	Type      string `form:"type" validate:"required,oneof=trend technology inspiration"`
	Title     string `form:"title" validate:"min=3"`
	Summary   string `form:"summary" validate:"min=10"`
	SourceURL string `form:"source_url" validate:"omitempty,url"`
}

var manualMessages = map[string]string{
	"type":       msgChooseType,
	"title":      msgMin3,
	"summary":    msgMin10,
	"source_url": msgInvalidURL,
}

// ManualForm captures a content item typed in by the user
type ManualForm struct {
	machine
	backend Backend
	values  ManualValues
}

func NewManualForm(backend Backend) *ManualForm {
	return &ManualForm{backend: backend}
}

func (f *ManualForm) Kind() models.SourceType { return models.SourceManual }

// Values returns a copy of the current input
func (f *ManualForm) Values() ManualValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// SetValues replaces the current input
func (f *ManualForm) SetValues(v ManualValues) {
	f.mu.Lock()
	f.values = v
	f.mu.Unlock()
}

func (f *ManualForm) Validate() error {
	return asError(validateManual(f.Values()))
}

func validateManual(v ManualValues) *ValidationError {
	return check(manualFields{
		Type:      strings.TrimSpace(v.Type),
		Title:     strings.TrimSpace(v.Title),
		Summary:   strings.TrimSpace(v.Summary),
		SourceURL: strings.TrimSpace(v.SourceURL),
	}, manualMessages)
}

// Submit validates and posts the form as JSON. On success the form is
// cleared; on failure the input is kept for a manual retry.
func (f *ManualForm) Submit(ctx context.Context) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	v := f.Values()
	if verr := validateManual(v); verr != nil {
		f.rejected(verr)
		return verr
	}

	f.transition(Submitting)
	sub := models.ContentSubmission{
		Type:       models.ContentType(strings.TrimSpace(v.Type)),
		Title:      models.NullIfEmpty(strings.TrimSpace(v.Title)),
		Summary:    models.NullIfEmpty(strings.TrimSpace(v.Summary)),
		Tags:       ParseTags(v.Tags),
		SourceURL:  models.NullIfEmpty(strings.TrimSpace(v.SourceURL)),
		SourceType: models.SourceManual,
	}

	if _, err := f.backend.CreateContent(ctx, sub); err != nil {
		f.fail(models.SourceManual, msgSaveFailed, err)
		return err
	}

	f.SetValues(ManualValues{})
	f.succeed(models.SourceManual, msgSaved)
	return nil
}

// Reset clears input and feedback
func (f *ManualForm) Reset() {
	f.SetValues(ManualValues{})
	f.clearOutcome()
}
