package verification

import (
	"errors"

	verifysvc "hindtrade-backend/internal/application/verification"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *verifysvc.Service
}

// DecisionRequest is the approve/reject body.
type DecisionRequest struct {
	ExporterID string `json:"exporter_id"`
	Notes      string `json:"notes"`
}

func fail(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	var step *verifysvc.StepError
	switch {
	case errors.As(err, &verr):
		return response.BadRequest(c, verr.Message)
	case errors.Is(err, verifysvc.ErrMissingFields),
		errors.Is(err, verifysvc.ErrInvalidFilter),
		errors.Is(err, verifysvc.ErrNotesTooLong):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, verifysvc.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, verifysvc.ErrAlreadyVerified),
		errors.Is(err, verifysvc.ErrPendingRequestExists),
		errors.Is(err, verifysvc.ErrAlreadyDecided):
		return response.Conflict(c, err.Error())
	case errors.As(err, &step):
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("step", step.Step).Msg("verification: step failed")
		return response.Error(c, step.Step, fiber.StatusInternalServerError, nil)
	case errors.Is(err, verifysvc.ErrCreationFailed):
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("verification: submit failed")
		return response.Error(c, verifysvc.ErrCreationFailed.Error(), fiber.StatusInternalServerError, nil)
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("verification: request failed")
	return response.Internal(c)
}

// Submit POST /api/v1/verification/submit: save the exporter profile and open a pending request.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in verifysvc.ExporterInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return fail(c, err)
	}
	req, err := h.Service.SubmitForVerification(c.UserContext(), accountID, in)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Verification request submitted", req, nil)
}

// Mine GET /api/v1/verification/me: latest request of the caller's exporter, or null.
func (h *Handlers) Mine(c *fiber.Ctx) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	req, err := h.Service.GetLatestForExporter(c.UserContext(), accountID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Verification request fetched successfully", req, nil)
}

// List GET /api/v1/verification/requests?status=. Read failures degrade to an empty list.
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.ListRequests(c.UserContext(), c.Query("status"))
	if err != nil {
		if errors.Is(err, verifysvc.ErrInvalidFilter) {
			return fail(c, err)
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("verification: list failed")
		return response.Success(c, "Verification requests unavailable", []verifysvc.RequestWithExporter{}, fiber.Map{
			"count": 0,
			"error": "Failed to load verification requests",
		})
	}
	return response.Success(c, "Verification requests fetched successfully", list, fiber.Map{"count": len(list)})
}

type decision struct {
	requestID  uuid.UUID
	exporterID uuid.UUID
	notes      string
}

// parseDecision reads :id and the body; msg is the 400 message on failure.
func parseDecision(c *fiber.Ctx) (d decision, msg string) {
	var err error
	if d.requestID, err = uuid.Parse(c.Params("id")); err != nil {
		return d, "Invalid request id"
	}
	var body DecisionRequest
	if err := c.BodyParser(&body); err != nil {
		return d, "Invalid request body"
	}
	if d.exporterID, err = uuid.Parse(body.ExporterID); err != nil {
		return d, "exporter_id is required"
	}
	d.notes = body.Notes
	return d, ""
}

// Approve POST /api/v1/verification/requests/:id/approve { exporter_id }
func (h *Handlers) Approve(c *fiber.Ctx) error {
	reviewerID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	d, msg := parseDecision(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}
	res, err := h.Service.Approve(c.UserContext(), d.requestID, d.exporterID, reviewerID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Exporter approved and trade card issued", res, nil)
}

// Reject POST /api/v1/verification/requests/:id/reject { exporter_id, notes }
func (h *Handlers) Reject(c *fiber.Ctx) error {
	reviewerID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	d, msg := parseDecision(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}
	req, err := h.Service.Reject(c.UserContext(), d.requestID, d.exporterID, reviewerID, d.notes)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Verification request rejected", req, nil)
}

// UpdateNotes PATCH /api/v1/verification/requests/:id/notes { notes }
func (h *Handlers) UpdateNotes(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req, err := h.Service.UpdateNotes(c.UserContext(), requestID, body.Notes)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Notes updated", req, nil)
}
