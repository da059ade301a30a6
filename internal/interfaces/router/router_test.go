package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hindtrade-backend/internal/config"
	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/testdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testConfig points every outbound probe at a local server.
func testConfig(t *testing.T) *config.Config {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)
	return &config.Config{
		Env:          "test",
		PublicAppURL: upstream.URL,
		QRServiceURL: upstream.URL,
		QRSize:       "200x200",
	}
}

func testRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb
}

type client struct {
	t      *testing.T
	app    *fiber.App
	cookie string
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: c.cookie})
	}
	resp, err := c.app.Test(req)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookieName {
			c.cookie = ck.Value
		}
	}
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestBuildWithoutDatabaseServesHealthOnly(t *testing.T) {
	app := Build(testConfig(t), nil, testRedis(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func signUp(t *testing.T, app *fiber.App, email, name, role string) *client {
	c := &client{t: t, app: app}
	code, _ := c.do("POST", "/api/v1/auth/sign-up", map[string]string{
		"email": email, "password": "Secret#123", "full_name": name, "role": role,
	})
	require.Equal(t, fiber.StatusCreated, code)
	return c
}

func promoteToAdmin(t *testing.T, db *gorm.DB, app *fiber.App, email, name string) *client {
	c := signUp(t, app, email, name, "buyer")
	require.NoError(t, db.Model(&domain.Profile{}).Where("full_name = ?", name).Update("role", "admin").Error)
	code, _ := c.do("POST", "/api/v1/auth/sign-in", map[string]string{"email": email, "password": "Secret#123"})
	require.Equal(t, fiber.StatusOK, code)
	return c
}

func TestVerificationFlowEndToEnd(t *testing.T) {
	db := testdb.Open(t)
	app := Build(testConfig(t), db, testRedis(t))

	exporter := signUp(t, app, "asha@example.com", "Asha Rao", "exporter")
	admin := promoteToAdmin(t, db, app, "ops@example.com", "Ops Admin")

	// permissions are enforced per route
	code, _ := admin.do("POST", "/api/v1/verification/submit", map[string]string{"company_name": "X"})
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = exporter.do("GET", "/api/v1/verification/requests", nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = exporter.do("GET", "/api/v1/profiles/me", nil)
	assert.Equal(t, fiber.StatusOK, code)

	code, out := exporter.do("POST", "/api/v1/verification/submit", map[string]string{
		"company_name": "Acme Exports", "gst_number": "27AAPFU0939F1ZV", "city": "Mumbai",
	})
	require.Equal(t, fiber.StatusCreated, code)
	req := out["data"].(map[string]interface{})

	code, out = admin.do("GET", "/api/v1/verification/requests?status=pending", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 1)

	code, out = admin.do("POST", "/api/v1/verification/requests/"+req["id"].(string)+"/approve",
		map[string]string{"exporter_id": req["exporter_id"].(string)})
	require.Equal(t, fiber.StatusOK, code)
	cardID := out["data"].(map[string]interface{})["card_id"].(string)
	assert.Regexp(t, `^HT-MUM-\d{4}-[0-9A-Z]{4}$`, cardID)

	code, out = exporter.do("GET", "/api/v1/trade-cards/me", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, cardID, out["data"].(map[string]interface{})["card_id"])

	cfgURL := out["data"].(map[string]interface{})["public_url"].(string)
	anon := &client{t: t, app: app}
	code, out = anon.do("GET", "/trade-card/"+cardID, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, cfgURL, out["data"].(map[string]interface{})["public_url"])
	assert.Contains(t, cfgURL, "/trade-card/"+cardID)

	code, _ = exporter.do("DELETE", "/api/v1/auth/sign-out", nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = exporter.do("GET", "/api/v1/trade-cards/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
