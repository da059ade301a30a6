package shipments

import (
	"errors"

	exportersvc "hindtrade-backend/internal/application/exporters"
	shipmentsvc "hindtrade-backend/internal/application/shipments"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *shipmentsvc.Service
}

func fail(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return response.BadRequest(c, verr.Message)
	case errors.Is(err, exportersvc.ErrProfileRequired), errors.Is(err, shipmentsvc.ErrInvalidStatus):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, shipmentsvc.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, shipmentsvc.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("shipments: request failed")
	return response.Internal(c)
}

// Create POST /api/v1/shipments
func (h *Handlers) Create(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in shipmentsvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	sh, err := h.Service.Create(c.UserContext(), accountID, in)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Shipment logged", sh, nil)
}

// List GET /api/v1/shipments
func (h *Handlers) List(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.List(c.UserContext(), accountID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Shipments fetched successfully", list, fiber.Map{"count": len(list)})
}

// UpdateStatus PATCH /api/v1/shipments/:id/status { status }
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid shipment id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	sh, err := h.Service.UpdateStatus(c.UserContext(), accountID, id, body.Status)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Shipment status updated", sh, nil)
}
