package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/bilgisen/addconnect/internal/models"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (compatible; AddConnect/1.0)"

// maxPageBytes caps how much of a page is read; the metadata lives in <head>
const maxPageBytes = 2 << 20

var httpURL = regexp.MustCompile(`^https?://`)

// ValidURL reports whether raw is an http(s) URL the fetcher will follow
func ValidURL(raw string) bool {
	return httpURL.MatchString(strings.TrimSpace(raw))
}

// Fetcher downloads pages for metadata extraction
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(1).
			SetRetryWaitTime(500*time.Millisecond).
			SetRetryMaxWaitTime(2*time.Second).
			SetHeader("User-Agent", userAgent),
	}
}

// Fetch retrieves url and extracts its preview. Fetch failures are reported
// in the Error field with all metadata null, never as an error return. At
// most maxPageBytes of the page are read.
func (f *Fetcher) Fetch(ctx context.Context, url string) *models.Preview {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		Get(url)

	if err != nil {
		return &models.Preview{Error: fmt.Sprintf("failed to fetch %s: %v", url, err)}
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return &models.Preview{Error: fmt.Sprintf("unexpected status code %d from %s", resp.StatusCode(), url)}
	}

	p, err := ParseMeta(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return &models.Preview{Error: err.Error()}
	}
	return p
}
