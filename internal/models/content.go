package models

import (
	"strings"
	"time"
)

// ContentType is the category a submitted item belongs to
type ContentType string

const (
	TypeTrend       ContentType = "trend"
	TypeTechnology  ContentType = "technology"
	TypeInspiration ContentType = "inspiration"
)

// ContentTypes lists the selectable types in display order
var ContentTypes = []ContentType{TypeTrend, TypeTechnology, TypeInspiration}

// Label returns the human readable name of the type
func (t ContentType) Label() string {
	switch t {
	case TypeTrend:
		return "Trend"
	case TypeTechnology:
		return "Technology"
	case TypeInspiration:
		return "Inspiration"
	}
	return string(t)
}

// ParseContentType normalizes raw input and reports whether it names a known type
func ParseContentType(raw string) (ContentType, bool) {
	t := ContentType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ContentTypes {
		if t == known {
			return t, true
		}
	}
	return t, false
}

// SourceType records which intake path produced a submission
type SourceType string

const (
	SourceManual SourceType = "manual"
	SourceURL    SourceType = "url"
	SourceFile   SourceType = "file"
)

// Status of a stored content record
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
)

// ParseStatus falls back to draft for empty input
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "":
		return StatusDraft, true
	case StatusDraft, StatusApproved:
		return s, true
	}
	return s, false
}

// ContentSubmission is the JSON body of POST /content.
// Nullable fields are pointers so absent values encode as null.
type ContentSubmission struct {
	Type       ContentType `json:"type"`
	Title      *string     `json:"title"`
	Summary    *string     `json:"summary"`
	Tags       []string    `json:"tags"`
	SourceURL  *string     `json:"source_url" validate:"omitempty,url"`
	SourceType SourceType  `json:"source_type"`
	Image      *string     `json:"image"`
	Site       *string     `json:"site"`
	Status     string      `json:"status,omitempty"`
}

// Preview is the link metadata returned by GET /content/preview
type Preview struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Site        *string `json:"site"`
	Error       string  `json:"error,omitempty"`
}

// Empty reports whether no metadata field is populated
func (p *Preview) Empty() bool {
	return p == nil || (p.Title == nil && p.Description == nil && p.Image == nil && p.Site == nil)
}

// Content is a stored content record
type Content struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary,omitempty"`
	ContentType ContentType `json:"content_type"`
	ImageURL    string      `json:"image_url,omitempty"`
	Site        string      `json:"site,omitempty"`
	SourceURL   string      `json:"source_url,omitempty"`
	SourceType  SourceType  `json:"source_type"`
	Tags        []string    `json:"tags"`
	Status      Status      `json:"status"`
	FileName    string      `json:"file_name,omitempty"`
	FileSize    int64       `json:"file_size,omitempty"`
	FilePath    string      `json:"file_path,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty"`
}

// UploadResult is the body of a successful POST /content/upload
type UploadResult struct {
	OK       bool     `json:"ok"`
	Filename string   `json:"filename"`
	Content  *Content `json:"content"`
}

// Stats aggregates record counts per type
type Stats struct {
	TotalContents int `json:"total_contents"`
	Trends        int `json:"trends"`
	Technologies  int `json:"technologies"`
	Inspirations  int `json:"inspirations"`
}

// NullIfEmpty returns nil for blank strings so they serialize as null
func NullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
