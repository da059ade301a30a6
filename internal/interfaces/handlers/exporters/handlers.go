package exporters

import (
	"errors"

	exportersvc "hindtrade-backend/internal/application/exporters"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *exportersvc.Service
}

// GetMe GET /api/v1/exporters/me: data is null until the exporter record exists.
func (h *Handlers) GetMe(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	exp, err := h.Service.GetByAccount(c.UserContext(), accountID)
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("exporters: fetch failed")
		return response.Internal(c)
	}
	if exp == nil {
		return response.Success(c, "No exporter profile yet", nil, nil)
	}
	return response.Success(c, "Exporter fetched successfully", exp, nil)
}

// UpdateMe PATCH /api/v1/exporters/me
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in exportersvc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	exp, err := h.Service.UpdateOwn(c.UserContext(), accountID, in)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			return response.BadRequest(c, verr.Message)
		case errors.Is(err, exportersvc.ErrNoValidFields):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, exportersvc.ErrLockedWhenVerified):
			return response.Conflict(c, err.Error())
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("exporters: update failed")
		return response.Internal(c)
	}
	return response.Success(c, "Exporter updated successfully", exp, nil)
}
