package auth

import (
	"errors"

	authsvc "hindtrade-backend/internal/application/auth"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/response"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
	Config  middleware.SessionConfig
}

// SignInRequest body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp POST /api/v1/auth/sign-up: create account + profile, start a session.
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var in authsvc.SignUpInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	id, err := h.Service.SignUp(c.UserContext(), in)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			return response.BadRequest(c, verr.Message)
		case errors.Is(err, authsvc.ErrRoleNotSelfService):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		case errors.Is(err, authsvc.ErrEmailTaken):
			return response.Conflict(c, err.Error())
		default:
			log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("auth: sign-up failed")
			return response.Internal(c)
		}
	}
	if err := h.startSession(c, id); err != nil {
		return response.Internal(c)
	}
	return response.SuccessCreated(c, "Account created", fiber.Map{"user": id.SessionUser()}, nil)
}

// SignIn POST /api/v1/auth/sign-in: check credentials, regenerate the session, set the cookie.
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, authsvc.ErrEmailPasswordRequired.Error())
	}
	id, err := h.Service.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, authsvc.ErrInvalidEmail), errors.Is(err, authsvc.ErrIncorrectPassword):
			return response.Unauthorized(c, err.Error())
		case errors.Is(err, authsvc.ErrAccountSuspended):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("auth: sign-in failed")
			return response.Internal(c)
		}
	}
	if err := h.startSession(c, id); err != nil {
		return response.Internal(c)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": id.SessionUser()}, nil)
}

func (h *Handlers) startSession(c *fiber.Ctx, id *authsvc.Identity) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, id.SessionUser())
	if err := h.Service.StartSession(c.UserContext(), id.Account.AccountID, sessionID); err != nil {
		log.Error().Err(err).Str("account_id", id.Account.AccountID.String()).Msg("auth: session tracking failed")
		return err
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
	return nil
}

// Me GET /api/v1/auth/me: the current session user, 401 without one.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		if middleware.GetSessionID(c) != "" {
			log.Debug().Str("path", c.Path()).Msg("auth/me: session id present but no user in session data")
		}
		return response.Unauthorized(c, authsvc.ErrNotAuthenticated.Error())
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// SignOut DELETE /api/v1/auth/sign-out: drop the session and clear the cookie.
func (h *Handlers) SignOut(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	accountID := ""
	if user, ok := middleware.CurrentUser(c); ok {
		accountID = user.AccountID
	}
	h.Service.EndSession(c.UserContext(), accountID, sessionID)
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out successfully", nil, nil)
}
