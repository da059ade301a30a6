package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"
)

// Storage buckets.
const (
	BucketProductImages     = "product-images"
	BucketExporterDocuments = "exporter-documents"
	BucketCompanyLogos      = "company-logos"
)

var (
	ErrInvalidBucket       = errors.New("Unknown storage bucket")
	ErrFileNameRequired    = errors.New("File name is required")
	ErrUnsupportedFileType = errors.New("Unsupported file type")
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// allowed extensions per bucket
var bucketExtensions = map[string][]string{
	BucketProductImages:     {".jpg", ".jpeg", ".png", ".webp"},
	BucketCompanyLogos:      {".jpg", ".jpeg", ".png", ".webp", ".svg"},
	BucketExporterDocuments: {".pdf", ".jpg", ".jpeg", ".png"},
}

// SupabaseClient defines what we need from Supabase storage.
type SupabaseClient interface {
	CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error)
}

// HTTPClient is a SupabaseClient backed by the storage HTTP API.
type HTTPClient struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

type supabaseSignedUploadResponse struct {
	SignedURL      string `json:"signedUrl"`
	SignedURLSnake string `json:"signed_url"`
	URL            string `json:"url"` // relative, includes ?token=
}

func (c *HTTPClient) CreateSignedUploadURL(ctx context.Context, bucket, objectPath string) (string, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("supabase: SUPABASE_URL is not set")
	}
	if c.SecretKey == "" {
		return "", fmt.Errorf("supabase: SUPABASE_SECRET_KEY is not set")
	}
	base := strings.TrimRight(c.BaseURL, "/")
	url := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", base, bucket, objectPath)

	bodyBytes, _ := json.Marshal(map[string]interface{}{
		"expiresIn": 3600,
		"upsert":    false,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.SecretKey)
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(respBody)
		if (resp.StatusCode == 400 || resp.StatusCode == 403) &&
			(strings.Contains(bodyStr, "Invalid Compact JWS") || strings.Contains(bodyStr, "Unauthorized")) {
			return "", fmt.Errorf("supabase storage rejected the key, SUPABASE_SECRET_KEY must be the service_role key (body: %s)", bodyStr)
		}
		return "", fmt.Errorf("supabase error: status %d body: %s", resp.StatusCode, bodyStr)
	}

	var data supabaseSignedUploadResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("supabase response decode: %w", err)
	}
	switch {
	case data.SignedURL != "":
		return data.SignedURL, nil
	case data.SignedURLSnake != "":
		return data.SignedURLSnake, nil
	case data.URL != "":
		u := data.URL
		if u[0] != '/' {
			u = "/" + u
		}
		return base + "/storage/v1" + strings.TrimPrefix(u, "/storage/v1"), nil
	}
	return "", fmt.Errorf("supabase returned no signed URL, body: %s", string(respBody))
}

// Service signs uploads into the known buckets.
type Service struct {
	Client      SupabaseClient
	SupabaseURL string
	Now         func() time.Time
}

// UploadResult is returned to the browser, which PUTs the file to UploadURL.
type UploadResult struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Path      string `json:"path"`
}

// SanitizeFileName keeps the base name and replaces anything outside [A-Za-z0-9._-].
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_")
}

// GetSignedUploadURL signs an upload under <owner>/<millis>-<file> in bucket.
func (s *Service) GetSignedUploadURL(ctx context.Context, bucket, owner, fileName string) (*UploadResult, error) {
	exts, ok := bucketExtensions[bucket]
	if !ok {
		return nil, ErrInvalidBucket
	}
	clean := SanitizeFileName(fileName)
	if clean == "" {
		return nil, ErrFileNameRequired
	}
	ext := strings.ToLower(path.Ext(clean))
	allowed := false
	for _, e := range exts {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrUnsupportedFileType
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	objectPath := fmt.Sprintf("%d-%s", now().UnixMilli(), clean)
	if owner != "" {
		objectPath = owner + "/" + objectPath
	}

	signedURL, err := s.Client.CreateSignedUploadURL(ctx, bucket, objectPath)
	if err != nil {
		return nil, err
	}
	publicBase := strings.TrimRight(s.SupabaseURL, "/")
	return &UploadResult{
		UploadURL: signedURL,
		PublicURL: fmt.Sprintf("%s/storage/v1/object/public/%s/%s", publicBase, bucket, objectPath),
		Path:      objectPath,
	}, nil
}
