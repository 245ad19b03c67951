package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bilgisen/addconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func title(s string) *string { return &s }

func TestMemoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok, err := c.GetPreview(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	p := &models.Preview{Title: title("Hello")}
	require.NoError(t, c.SetPreview(ctx, "abc", p, time.Minute))

	got, ok, err := c.GetPreview(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hello", *got.Title)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetPreview(ctx, "k", &models.Preview{}, time.Minute))
	_, ok, _ := c.GetPreview(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = c.GetPreview(ctx, "k")
	assert.False(t, ok, "entry should expire at its deadline")
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.SetPreview(ctx, "k", &models.Preview{}, 0))
	require.NoError(t, c.ClearPreviews(ctx))

	_, ok, _ := c.GetPreview(ctx, "k")
	assert.False(t, ok)
}

func TestRedisClient(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedisClient(url, "addconnect-test:")
	require.NoError(t, err)
	defer c.Close()
	defer c.ClearPreviews(ctx)

	require.NoError(t, c.SetPreview(ctx, "k", &models.Preview{Title: title("Hi")}, time.Minute))
	got, ok, err := c.GetPreview(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hi", *got.Title)
	assert.Nil(t, got.Image)
}
