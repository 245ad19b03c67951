package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bilgisen/addconnect/internal/logger"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/bilgisen/addconnect/internal/storage"
	"github.com/google/uuid"
)

// InputError marks a request the caller must fix; handlers map it to 400
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is an *InputError
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// ErrNotFound is returned for unknown content IDs
var ErrNotFound = storage.ErrNotFound

const untitled = "Untitled"

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

type ContentService struct {
	store *storage.Storage
	blobs storage.BlobStore
	now   func() time.Time
	newID func() string
}

func NewContentService(store *storage.Storage, blobs storage.BlobStore) *ContentService {
	return &ContentService{
		store: store,
		blobs: blobs,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func typeError() error {
	names := make([]string, 0, len(models.ContentTypes))
	for _, t := range models.ContentTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return invalid("Invalid type. Must be one of [%s]", strings.Join(names, ", "))
}

// Create stores a submission from the manual or URL path
func (s *ContentService) Create(ctx context.Context, sub *models.ContentSubmission) (*models.Content, error) {
	ctype, ok := models.ParseContentType(string(sub.Type))
	if !ok {
		return nil, typeError()
	}
	status, ok := models.ParseStatus(sub.Status)
	if !ok {
		return nil, invalid("invalid status")
	}

	sourceType := models.SourceType(strings.ToLower(strings.TrimSpace(string(sub.SourceType))))
	switch sourceType {
	case "":
		sourceType = models.SourceManual
	case models.SourceManual, models.SourceURL, models.SourceFile:
	default:
		return nil, invalid("invalid source_type")
	}

	now := s.now().UTC()
	item := &models.Content{
		ID:          s.newID(),
		Title:       cleanText(models.Deref(sub.Title)),
		Summary:     cleanText(models.Deref(sub.Summary)),
		ContentType: ctype,
		ImageURL:    strings.TrimSpace(models.Deref(sub.Image)),
		Site:        cleanText(models.Deref(sub.Site)),
		SourceURL:   strings.TrimSpace(models.Deref(sub.SourceURL)),
		SourceType:  sourceType,
		Tags:        cleanTags(sub.Tags),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// A URL submitted without preview has no title of its own
	if item.Title == "" {
		item.Title = item.SourceURL
	}
	if item.Title == "" {
		item.Title = untitled
	}

	if err := s.store.SaveContent(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save content: %w", err)
	}

	logger.Get().Info().
		Str("id", item.ID).
		Str("type", string(item.ContentType)).
		Str("source_type", string(item.SourceType)).
		Msg("Content created")
	return item, nil
}

// UploadRequest is a decoded multipart upload
type UploadRequest struct {
	File     io.Reader
	Filename string
	Size     int64
	MIMEType string
	Type     string
	Title    string
	Tags     string // JSON array
	Status   string
}

// Upload stores the file in the blob store and creates a file record
func (s *ContentService) Upload(ctx context.Context, req UploadRequest) (*models.UploadResult, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, invalid("empty filename")
	}
	ctype, ok := models.ParseContentType(req.Type)
	if !ok {
		return nil, typeError()
	}
	status, ok := models.ParseStatus(req.Status)
	if !ok {
		return nil, invalid("invalid status")
	}
	tags, err := parseTagsJSON(req.Tags)
	if err != nil {
		return nil, err
	}
	filename := storage.SecureFilename(req.Filename)
	if filename == "" {
		return nil, invalid("invalid filename")
	}

	id := s.newID()
	location, err := s.blobs.Put(ctx, id+"_"+filename, req.File, req.Size, req.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	now := s.now().UTC()
	item := &models.Content{
		ID:          id,
		Title:       cleanText(req.Title),
		ContentType: ctype,
		SourceType:  models.SourceFile,
		Tags:        tags,
		Status:      status,
		FileName:    filename,
		FileSize:    req.Size,
		FilePath:    location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if item.Title == "" {
		item.Title = filename
	}
	if strings.HasPrefix(req.MIMEType, "image/") {
		item.ImageURL = location
	}

	if err := s.store.SaveContent(ctx, item); err != nil {
		if derr := s.blobs.Delete(ctx, location); derr != nil {
			logger.Get().Warn().Err(derr).Str("location", location).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("failed to save content: %w", err)
	}

	logger.Get().Info().
		Str("id", item.ID).
		Str("filename", filename).
		Int64("size", req.Size).
		Msg("File uploaded")
	return &models.UploadResult{OK: true, Filename: filename, Content: item}, nil
}

func (s *ContentService) Get(ctx context.Context, id string) (*models.Content, error) {
	return s.store.GetContent(ctx, id)
}

func (s *ContentService) List(ctx context.Context, f storage.Filter) ([]*models.Content, error) {
	return s.store.ListContents(ctx, f)
}

func (s *ContentService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.store.Stats(ctx)
}

// Delete removes the record and, best effort, its uploaded file
func (s *ContentService) Delete(ctx context.Context, id string) error {
	item, err := s.store.DeleteContent(ctx, id)
	if err != nil {
		return err
	}
	if item.FilePath != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, item.FilePath); err != nil {
			logger.Get().Warn().Err(err).Str("id", id).Msg("Failed to delete uploaded file")
		}
	}
	logger.Get().Info().Str("id", id).Msg("Content deleted")
	return nil
}

// cleanText replaces control characters and normalizes whitespace
func cleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = cleanText(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseTagsJSON(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, invalid("tags must be a JSON array of strings")
	}
	return cleanTags(tags), nil
}
