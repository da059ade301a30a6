package shipments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	exportersvc "hindtrade-backend/internal/application/exporters"
	shipmentsvc "hindtrade-backend/internal/application/shipments"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentsHandlers(t *testing.T) {
	db := testdb.Open(t)
	exp := &exportersvc.Service{DB: db}
	owner := uuid.New()
	_, err := exp.EnsureForAccount(context.Background(), owner, "Acme")
	require.NoError(t, err)

	h := &Handlers{Service: &shipmentsvc.Service{DB: db, Exporters: exp}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetSessionUser(c, middleware.SessionUser{AccountID: owner.String(), Role: "exporter"})
		return c.Next()
	})
	app.Post("/shipments", h.Create)
	app.Get("/shipments", h.List)
	app.Patch("/shipments/:id/status", h.UpdateStatus)

	send := func(method, path string, body interface{}) (int, map[string]interface{}) {
		var b []byte
		if body != nil {
			b, _ = json.Marshal(body)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		var out map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	code, _ := send("POST", "/shipments", map[string]string{"reference": "BL-1"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out := send("POST", "/shipments", map[string]string{"reference": "BL-1", "destination_country": "UAE"})
	require.Equal(t, fiber.StatusCreated, code)
	id := out["data"].(map[string]interface{})["id"].(string)

	code, _ = send("PATCH", "/shipments/"+id+"/status", map[string]string{"status": "delivered"})
	assert.Equal(t, fiber.StatusConflict, code)
	code, _ = send("PATCH", "/shipments/"+id+"/status", map[string]string{"status": "lost"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, out = send("PATCH", "/shipments/"+id+"/status", map[string]string{"status": "in_transit"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "in_transit", out["data"].(map[string]interface{})["status"])
	assert.NotNil(t, out["data"].(map[string]interface{})["shipped_at"])

	code, _ = send("PATCH", "/shipments/"+uuid.NewString()+"/status", map[string]string{"status": "cancelled"})
	assert.Equal(t, fiber.StatusNotFound, code)

	code, out = send("GET", "/shipments", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"].([]interface{}), 1)
}
