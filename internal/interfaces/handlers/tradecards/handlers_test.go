package tradecards

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hindtrade-backend/internal/application/qrcode"
	cardsvc "hindtrade-backend/internal/application/tradecards"
	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/testdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCardsApp(t *testing.T, qrStatus int) (*fiber.App, uuid.UUID, *int32) {
	var hits int32
	qrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(qrStatus)
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	t.Cleanup(qrSrv.Close)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	db := testdb.Open(t)
	acc := uuid.New()
	exp := domain.Exporter{AccountID: acc, CompanyName: "Acme Exports", City: "Mumbai", Verified: true,
		VerificationStatus: domain.VerificationApproved, TrustScore: 80}
	require.NoError(t, db.Create(&exp).Error)
	require.NoError(t, db.Create(&domain.TradeCard{ExporterID: exp.ExporterID, CardID: "HT-MUM-2026-AB12", TrustScore: 80,
		IsActive: true, PublicURL: "https://hindtrade.ai/trade-card/HT-MUM-2026-AB12",
		QRCodeURL: qrSrv.URL + "/?size=200x200&data=x", IssuedAt: time.Now()}).Error)

	h := &Handlers{Service: &cardsvc.Service{DB: db, QR: &qrcode.Client{Rdb: rdb}}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-Account"); id != "" {
			middleware.SetSessionUser(c, middleware.SessionUser{AccountID: id, Role: "exporter"})
		}
		return c.Next()
	})
	app.Get("/trade-cards/me", middleware.RequireAuth(), h.GetMine)
	app.Get("/trade-card/:cardId", h.GetPublic)
	app.Get("/trade-card/:cardId/qr", h.QR)
	return app, acc, &hits
}

func TestGetPublic(t *testing.T) {
	app, _, _ := setupCardsApp(t, http.StatusOK)

	resp, err := app.Test(httptest.NewRequest("GET", "/trade-card/ht-mum-2026-ab12", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "HT-MUM-2026-AB12", data["card_id"])
	assert.Equal(t, "Acme Exports", data["exporter"].(map[string]interface{})["company_name"])

	resp, err = app.Test(httptest.NewRequest("GET", "/trade-card/HT-XXX-2026-0000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetMine(t *testing.T) {
	app, acc, _ := setupCardsApp(t, http.StatusOK)

	req := httptest.NewRequest("GET", "/trade-cards/me", nil)
	req.Header.Set("X-Test-Account", acc.String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "HT-MUM-2026-AB12", out["data"].(map[string]interface{})["card_id"])

	req = httptest.NewRequest("GET", "/trade-cards/me", nil)
	req.Header.Set("X-Test-Account", uuid.NewString())
	resp, err = app.Test(req)
	require.NoError(t, err)
	out = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Nil(t, out["data"])

	resp, err = app.Test(httptest.NewRequest("GET", "/trade-cards/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestQR_CachedInRedis(t *testing.T) {
	app, _, hits := setupCardsApp(t, http.StatusOK)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/trade-card/HT-MUM-2026-AB12/qr", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "\x89PNG", string(body))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestQR_UpstreamFailure(t *testing.T) {
	app, _, _ := setupCardsApp(t, http.StatusInternalServerError)
	resp, err := app.Test(httptest.NewRequest("GET", "/trade-card/HT-MUM-2026-AB12/qr", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
