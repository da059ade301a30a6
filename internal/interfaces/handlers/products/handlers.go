package products

import (
	"errors"

	exportersvc "hindtrade-backend/internal/application/exporters"
	productsvc "hindtrade-backend/internal/application/products"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *productsvc.Service
}

func fail(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return response.BadRequest(c, verr.Message)
	case errors.Is(err, exportersvc.ErrProfileRequired), errors.Is(err, productsvc.ErrInvalidStatus):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, productsvc.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, productsvc.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("products: request failed")
	return response.Internal(c)
}

func productID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// Create POST /api/v1/products
func (h *Handlers) Create(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in productsvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.Create(c.UserContext(), accountID, in)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Product created successfully", p, nil)
}

// List GET /api/v1/products
func (h *Handlers) List(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.List(c.UserContext(), accountID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Products fetched successfully", list, fiber.Map{"count": len(list)})
}

// Update PUT /api/v1/products/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := productID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product id")
	}
	var in productsvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.Update(c.UserContext(), accountID, id, in)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Product updated successfully", p, nil)
}

// Delete DELETE /api/v1/products/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := productID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product id")
	}
	if err := h.Service.Delete(c.UserContext(), accountID, id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Product deleted successfully", nil, nil)
}

// RequestEnhancement POST /api/v1/products/:id/enhance
func (h *Handlers) RequestEnhancement(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := productID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product id")
	}
	p, err := h.Service.RequestEnhancement(c.UserContext(), accountID, id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Enhancement requested", p, nil)
}

// EnhancementQueue GET /api/v1/products/enhancements?status=requested
func (h *Handlers) EnhancementQueue(c *fiber.Ctx) error {
	list, err := h.Service.ListByEnhancementStatus(c.UserContext(), c.Query("status"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Enhancement queue fetched successfully", list, fiber.Map{"count": len(list)})
}

// DeliverRequest is the optional deliver-enhancement body.
type DeliverRequest struct {
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// DeliverEnhancement POST /api/v1/products/:id/deliver-enhancement { image_url }
func (h *Handlers) DeliverEnhancement(c *fiber.Ctx) error {
	actorID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := productID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product id")
	}
	var body DeliverRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if err := validation.Struct(body); err != nil {
		return fail(c, err)
	}
	p, err := h.Service.DeliverEnhancement(c.UserContext(), actorID, id, body.ImageURL)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Enhancement delivered", p, nil)
}
