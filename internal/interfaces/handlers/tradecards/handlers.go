package tradecards

import (
	"errors"
	"strings"

	"hindtrade-backend/internal/application/qrcode"
	cardsvc "hindtrade-backend/internal/application/tradecards"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *cardsvc.Service
}

// GetMine GET /api/v1/trade-cards/me: the caller's active card, or null.
func (h *Handlers) GetMine(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	card, err := h.Service.GetForAccount(c.UserContext(), accountID)
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("tradecards: fetch own card failed")
		return response.Internal(c)
	}
	return response.Success(c, "Trade card fetched successfully", card, nil)
}

// GetPublic GET /trade-card/:cardId and /api/v1/trade-cards/public/:cardId
func (h *Handlers) GetPublic(c *fiber.Ctx) error {
	cardID := strings.ToUpper(strings.TrimSpace(c.Params("cardId")))
	if cardID == "" {
		return response.BadRequest(c, "cardId is required")
	}
	card, err := h.Service.GetPublic(c.UserContext(), cardID)
	if err != nil {
		if errors.Is(err, cardsvc.ErrNotFound) {
			return response.NotFound(c, err.Error())
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("card_id", cardID).Msg("tradecards: public fetch failed")
		return response.Internal(c)
	}
	return response.Success(c, "Trade card fetched successfully", card, nil)
}

// QR GET /trade-card/:cardId/qr: PNG proxied through the Redis cache.
func (h *Handlers) QR(c *fiber.Ctx) error {
	cardID := strings.ToUpper(strings.TrimSpace(c.Params("cardId")))
	img, err := h.Service.QRImage(c.UserContext(), cardID)
	if err != nil {
		switch {
		case errors.Is(err, cardsvc.ErrNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, qrcode.ErrFetchFailed):
			log.Warn().Err(err).Str("card_id", cardID).Msg("tradecards: qr fetch failed")
			return response.Error(c, err.Error(), fiber.StatusBadGateway, nil)
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("tradecards: qr failed")
		return response.Internal(c)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(img)
}
