package uploads

import (
	"context"
	"errors"

	exportersvc "hindtrade-backend/internal/application/exporters"
	uploadsvc "hindtrade-backend/internal/application/uploads"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExporterResolver maps an account to its exporter id.
type ExporterResolver interface {
	RequireIDForAccount(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error)
}

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service   *uploadsvc.Service
	Exporters ExporterResolver
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

func (h *Handlers) sign(c *fiber.Ctx, bucket, owner string) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.BadRequest(c, "file_name is required")
	}
	res, err := h.Service.GetSignedUploadURL(c.UserContext(), bucket, owner, req.FileName)
	if err != nil {
		if errors.Is(err, uploadsvc.ErrFileNameRequired) || errors.Is(err, uploadsvc.ErrUnsupportedFileType) {
			return response.BadRequest(c, err.Error())
		}
		log.Error().Err(err).Str("bucket", bucket).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}

// UploadProductImage POST /api/v1/uploads/product-image
func (h *Handlers) UploadProductImage(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	exporterID, err := h.Exporters.RequireIDForAccount(c.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, exportersvc.ErrProfileRequired) {
			return response.BadRequest(c, err.Error())
		}
		log.Error().Err(err).Msg("upload: exporter lookup failed")
		return response.Internal(c)
	}
	return h.sign(c, uploadsvc.BucketProductImages, exporterID.String())
}

// UploadCompanyLogo POST /api/v1/uploads/company-logo
func (h *Handlers) UploadCompanyLogo(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	return h.sign(c, uploadsvc.BucketCompanyLogos, accountID.String())
}
