package profiles

import (
	"encoding/json"
	"errors"

	profilesvc "hindtrade-backend/internal/application/profiles"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *profilesvc.Service
}

func fail(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return response.BadRequest(c, verr.Message)
	case errors.Is(err, profilesvc.ErrNoValidFields),
		errors.Is(err, profilesvc.ErrInvalidStatus),
		errors.Is(err, profilesvc.ErrInvalidRole):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, profilesvc.ErrSelfChange):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, profilesvc.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, profilesvc.ErrInsufficientCredits):
		return response.Conflict(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("profiles: request failed")
	return response.Internal(c)
}

func targetID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// GetMe GET /api/v1/profiles/me
func (h *Handlers) GetMe(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	p, err := h.Service.Get(c.UserContext(), accountID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Profile fetched successfully", p, nil)
}

// UpdateMe PATCH /api/v1/profiles/me (full_name, company_name, phone)
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.UpdateOwn(c.UserContext(), accountID, body)
	if err != nil {
		return fail(c, err)
	}
	if name, ok := body["full_name"]; ok && name != nil {
		if user, ok := middleware.CurrentUser(c); ok {
			user.FullName = p.FullName
			middleware.SetSessionUser(c, *user)
		}
	}
	return response.Success(c, "Profile updated successfully", p, nil)
}

// List GET /api/v1/profiles?role=
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext(), c.Query("role"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Profiles fetched successfully", list, fiber.Map{"count": len(list)})
}

// SetStatus PATCH /api/v1/profiles/:id/status { status }
func (h *Handlers) SetStatus(c *fiber.Ctx) error {
	actorID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := targetID(c)
	if !ok {
		return response.BadRequest(c, "Invalid profile id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.SetStatus(c.UserContext(), actorID, id, body.Status)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Profile status updated", p, nil)
}

// SetRole PATCH /api/v1/profiles/:id/role { role }
func (h *Handlers) SetRole(c *fiber.Ctx) error {
	actorID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := targetID(c)
	if !ok {
		return response.BadRequest(c, "Invalid profile id")
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.SetRole(c.UserContext(), actorID, id, body.Role)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Profile role updated", p, nil)
}

// AdjustCredits PATCH /api/v1/profiles/:id/credits { delta }
func (h *Handlers) AdjustCredits(c *fiber.Ctx) error {
	actorID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := targetID(c)
	if !ok {
		return response.BadRequest(c, "Invalid profile id")
	}
	var body struct {
		Delta *int `json:"delta"`
	}
	if err := c.BodyParser(&body); err != nil || body.Delta == nil {
		return response.BadRequest(c, "delta is required")
	}
	p, err := h.Service.AdjustCredits(c.UserContext(), actorID, id, *body.Delta)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Credits updated", p, nil)
}
