package qrcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cacheKeyPrefix = "qr:"
	defaultTTL     = 24 * time.Hour
	maxImageBytes  = 1 << 20
)

// ErrFetchFailed is returned when the QR service fails, answers non-2xx or sends an oversized image.
var ErrFetchFailed = errors.New("QR image fetch failed")

// Client fetches QR images from the external service and caches them in Redis.
type Client struct {
	HTTP *http.Client
	Rdb  *redis.Client // optional
	TTL  time.Duration
}

func (c *Client) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return defaultTTL
}

// Image returns PNG bytes for imageURL, served from cache under key when present.
func (c *Client) Image(ctx context.Context, key, imageURL string) ([]byte, error) {
	cacheKey := cacheKeyPrefix + key
	if c.Rdb != nil {
		b, err := c.Rdb.Get(ctx, cacheKey).Bytes()
		if err == nil && len(b) > 0 {
			return b, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", cacheKey).Msg("qrcode: cache read failed")
		}
	}

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if len(b) > maxImageBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrFetchFailed, maxImageBytes)
	}

	if c.Rdb != nil {
		if err := c.Rdb.Set(ctx, cacheKey, b, c.ttl()).Err(); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("qrcode: cache write failed")
		}
	}
	return b, nil
}
