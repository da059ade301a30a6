package qrcode

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_CachesInRedis(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "200x200", r.URL.Query().Get("size"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG-fake"))
	}))
	defer srv.Close()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	c := &Client{Rdb: rdb}
	url := srv.URL + "/?size=200x200&data=x"
	for i := 0; i < 3; i++ {
		b, err := c.Image(context.Background(), "HT-MUM-2026-AB12", url)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG-fake", string(b))
	}
	assert.Equal(t, 1, hits)
	assert.True(t, mr.Exists("qr:HT-MUM-2026-AB12"))
}

func TestImage_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{}
	_, err := c.Image(context.Background(), "k", srv.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestImage_OversizedIsRejectedAndNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(bytes.Repeat([]byte{'x'}, maxImageBytes+1))
	}))
	defer srv.Close()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	c := &Client{Rdb: rdb}
	_, err = c.Image(context.Background(), "HT-MUM-2026-BIG1", srv.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.False(t, mr.Exists("qr:HT-MUM-2026-BIG1"))
}

func TestImage_ExactlyAtLimitIsServed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte{'x'}, maxImageBytes))
	}))
	defer srv.Close()

	b, err := (&Client{}).Image(context.Background(), "k", srv.URL)
	require.NoError(t, err)
	assert.Len(t, b, maxImageBytes)
}
