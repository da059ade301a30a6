package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "hindtrade-backend/internal/application/auth"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/testdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthApp(t *testing.T) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		Service: &authsvc.Service{DB: testdb.Open(t), Rdb: rdb, Events: &authsvc.SessionEvents{Rdb: rdb}},
	}
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/sign-up", h.SignUp)
	app.Post("/sign-in", h.SignIn)
	app.Get("/me", h.Me)
	app.Delete("/sign-out", h.SignOut)
	return app, rdb
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSignUpSignInMeSignOut(t *testing.T) {
	app, rdb := setupAuthApp(t)

	resp := postJSON(t, app, "/sign-up", map[string]string{
		"email": "Asha@Example.com", "password": "Secret#123", "full_name": "Asha Rao", "role": "exporter",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, sessionCookie(resp))

	resp = postJSON(t, app, "/sign-in", map[string]string{"email": "asha@example.com", "password": "Secret#123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.True(t, strings.HasPrefix(cookie, "s:"))
	sessionID := strings.TrimPrefix(cookie, "s:")
	exists, err := rdb.Exists(context.Background(), middleware.SessionRedisPrefix+sessionID).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	meResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, meResp.StatusCode)
	user := decode(t, meResp)["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, "exporter", user["role"])

	req = httptest.NewRequest("DELETE", "/sign-out", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	outResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, outResp.StatusCode)
	exists, err = rdb.Exists(context.Background(), middleware.SessionRedisPrefix+sessionID).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	meResp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, meResp.StatusCode)
}

func TestSignUpErrors(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := postJSON(t, app, "/sign-up", map[string]string{"email": "not-an-email", "password": "Secret#123", "full_name": "X"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/sign-up", map[string]string{"email": "ca@example.com", "password": "Secret#123", "full_name": "X", "role": "admin"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := map[string]string{"email": "dup@example.com", "password": "Secret#123", "full_name": "X"}
	assert.Equal(t, fiber.StatusCreated, postJSON(t, app, "/sign-up", body).StatusCode)
	resp = postJSON(t, app, "/sign-up", body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already registered", decode(t, resp)["error"].(map[string]interface{})["message"])
}

func TestSignInErrors(t *testing.T) {
	app, _ := setupAuthApp(t)
	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/sign-up", map[string]string{
		"email": "b@example.com", "password": "Secret#123", "full_name": "B",
	}).StatusCode)

	resp := postJSON(t, app, "/sign-in", map[string]string{"email": "b@example.com"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/sign-in", map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid Email", decode(t, resp)["error"].(map[string]interface{})["message"])

	resp = postJSON(t, app, "/sign-in", map[string]string{"email": "b@example.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Incorrect Password", decode(t, resp)["error"].(map[string]interface{})["message"])
}

func TestMe_NoSession(t *testing.T) {
	app, _ := setupAuthApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
