package api

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bilgisen/addconnect/internal/client"
	"github.com/bilgisen/addconnect/internal/intake"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs the app on a loopback listener and returns the API base
func serve(t *testing.T, env *testEnv) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = env.app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = env.app.ShutdownWithTimeout(5 * time.Second)
		<-done
	})
	return "http://" + ln.Addr().String() + "/api"
}

func TestClientAgainstServer(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
<meta property="og:title" content="Mycelium packaging">
<meta property="og:description" content="Grown, not made">
</head></html>`))
	}))
	defer page.Close()

	env := newTestEnv(t)
	c := client.New(serve(t, env), 5*time.Second)
	ctx := context.Background()

	p, err := c.FetchPreview(ctx, page.URL)
	require.NoError(t, err)
	assert.Equal(t, "Mycelium packaging", models.Deref(p.Title))

	form := intake.NewURLForm(c, intake.Options{})
	form.SetValues(intake.URLValues{URL: page.URL, Type: "inspiration", Tags: "materials, bio"})
	require.NoError(t, form.FetchPreview(ctx))
	require.NoError(t, form.Submit(ctx))
	assert.Equal(t, intake.OutcomeOK, form.Status().Outcome)

	var (
		mu    sync.Mutex
		steps []int
	)
	payload := bytes.Repeat([]byte("z"), 256<<10)
	res, err := c.Upload(ctx, client.UploadRequest{
		File:     bytes.NewReader(payload),
		FileName: "texture.bin",
		Type:     models.TypeTechnology,
		Tags:     []string{"raw"},
	}, func(pct int) {
		mu.Lock()
		steps = append(steps, pct)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "texture.bin", res.Filename)
	assert.Equal(t, int64(len(payload)), res.Content.FileSize)

	mu.Lock()
	require.NotEmpty(t, steps)
	assert.Equal(t, 100, steps[len(steps)-1])
	mu.Unlock()

	_, err = c.CreateContent(ctx, models.ContentSubmission{Type: "nonsense"})
	var terr *client.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
	assert.Equal(t, "Invalid type. Must be one of [inspiration, technology, trend]", terr.Message)
	assert.NotContains(t, err.Error(), `{"error"`)
}
