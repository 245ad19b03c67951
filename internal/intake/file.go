package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bilgisen/addconnect/internal/client"
	"github.com/bilgisen/addconnect/internal/models"
)

// SelectedFile is a file chosen through the picker or by drag and drop
type SelectedFile struct {
	Path string
	Name string
	Size int64
}

// FileValues are the fields of the upload form
type FileValues struct {
	File  *SelectedFile
	Type  string
	Title string
	Tags  string
}

type fileFields struct {
	File  *SelectedFile `form:"file" validate:"required"`
	Type  string        `form:"type" validate:"required,oneof=trend technology inspiration"`
	Title string        `form:"title" validate:"min=3"`
}

var fileMessages = map[string]string{
	"file":  msgChooseFile,
	"type":  msgChooseType,
	"title": msgMin3,
}

// FileForm uploads a file with metadata as multipart and tracks progress
type FileForm struct {
	machine
	backend Backend
	values  FileValues
	fileErr string
}

func NewFileForm(backend Backend) *FileForm {
	return &FileForm{backend: backend}
}

func (f *FileForm) Kind() models.SourceType { return models.SourceFile }

func (f *FileForm) Values() FileValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// SetMetadata updates type, title and tags without touching the file
func (f *FileForm) SetMetadata(contentType, title, tags string) {
	f.mu.Lock()
	f.values.Type = contentType
	f.values.Title = title
	f.values.Tags = tags
	f.mu.Unlock()
}

// SelectFile is the file-picker path. The file must exist and be a regular
// file; otherwise the selection is cleared and a field error returned.
func (f *FileForm) SelectFile(path string) error {
	sel, err := statFile(path)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.values.File = nil
		f.fileErr = err.Error()
		verr := &ValidationError{}
		verr.add("file", f.fileErr)
		return verr
	}
	f.values.File = sel
	f.fileErr = ""
	return nil
}

// DropFile is the drag-and-drop path; it converges on SelectFile
func (f *FileForm) DropFile(raw string) error {
	return f.SelectFile(NormalizeDroppedPath(raw))
}

// ChooseFile takes a path as typed or passed on the command line. The path
// is used verbatim and only run through drop normalisation when it does not
// name a file as is.
func (f *FileForm) ChooseFile(raw string) error {
	err := f.SelectFile(strings.TrimSpace(raw))
	if err == nil {
		return nil
	}
	if NormalizeDroppedPath(raw) == strings.TrimSpace(raw) {
		return err
	}
	return f.DropFile(raw)
}

func statFile(path string) (*SelectedFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s", msgChooseFile)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s", filepath.Base(path))
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", filepath.Base(path))
	}
	return &SelectedFile{Path: path, Name: info.Name(), Size: info.Size()}, nil
}

func (f *FileForm) Validate() error {
	return asError(f.validate(f.Values()))
}

func (f *FileForm) validate(v FileValues) *ValidationError {
	verr := check(fileFields{
		File:  v.File,
		Type:  strings.TrimSpace(v.Type),
		Title: strings.TrimSpace(v.Title),
	}, fileMessages)

	f.mu.Lock()
	fileErr := f.fileErr
	f.mu.Unlock()
	// A rejected pick explains itself better than "choose a file"
	if verr != nil && v.File == nil && fileErr != "" {
		for i := range verr.Fields {
			if verr.Fields[i].Field == "file" {
				verr.Fields[i].Message = fileErr
			}
		}
	}
	return verr
}

// Submit validates and uploads the file. Progress resets to 0 when the
// upload finishes either way; metadata survives a failure.
func (f *FileForm) Submit(ctx context.Context) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	v := f.Values()
	if verr := f.validate(v); verr != nil {
		f.rejected(verr)
		return verr
	}

	f.transition(Submitting)
	file, err := os.Open(v.File.Path)
	if err != nil {
		err = fmt.Errorf("failed to open %s: %w", v.File.Name, err)
		f.fail(models.SourceFile, msgUploadFail, err)
		return err
	}
	defer file.Close()

	f.transition(Uploading)
	_, err = f.backend.Upload(ctx, client.UploadRequest{
		File:     file,
		FileName: v.File.Name,
		Type:     models.ContentType(strings.TrimSpace(v.Type)),
		Title:    strings.TrimSpace(v.Title),
		Tags:     ParseTags(v.Tags),
	}, f.setProgress)
	if err != nil {
		f.fail(models.SourceFile, msgUploadFail, err)
		return err
	}

	f.clearInput()
	f.succeed(models.SourceFile, msgUploaded)
	return nil
}

func (f *FileForm) clearInput() {
	f.mu.Lock()
	f.values = FileValues{}
	f.fileErr = ""
	f.mu.Unlock()
}

func (f *FileForm) Reset() {
	f.clearInput()
	f.clearOutcome()
}
