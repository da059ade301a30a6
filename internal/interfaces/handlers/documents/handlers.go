package documents

import (
	"errors"

	docsvc "hindtrade-backend/internal/application/documents"
	exportersvc "hindtrade-backend/internal/application/exporters"
	uploadsvc "hindtrade-backend/internal/application/uploads"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *docsvc.Service
}

type uploadRequest struct {
	DocType  string `json:"doc_type"`
	FileName string `json:"file_name"`
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, docsvc.ErrInvalidDocType),
		errors.Is(err, exportersvc.ErrProfileRequired),
		errors.Is(err, uploadsvc.ErrFileNameRequired),
		errors.Is(err, uploadsvc.ErrUnsupportedFileType):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, docsvc.ErrNotFound):
		return response.NotFound(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("documents: request failed")
	return response.Internal(c)
}

// Create POST /api/v1/documents { doc_type, file_name }: returns the record and a signed upload URL.
func (h *Handlers) Create(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	ticket, err := h.Service.RequestUpload(c.UserContext(), accountID, req.DocType, req.FileName)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Document upload URL generated", ticket, nil)
}

// List GET /api/v1/documents
func (h *Handlers) List(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	docs, err := h.Service.List(c.UserContext(), accountID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Documents fetched successfully", docs, fiber.Map{"count": len(docs)})
}

// Delete DELETE /api/v1/documents/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid document id")
	}
	if err := h.Service.Delete(c.UserContext(), accountID, id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Document deleted successfully", nil, nil)
}
