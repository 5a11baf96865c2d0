package controller

import (
	"errors"

	"roomlink-be/internal/dto"
	"roomlink-be/internal/pkg/serverutils"
	"roomlink-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
	Hosted(ctx *fiber.Ctx) error
	Available(ctx *fiber.Ctx) error
	Join(ctx *fiber.Ctx) error
	Invite(ctx *fiber.Ctx) error
	MyInvitations(ctx *fiber.Ctx) error
	RespondInvite(ctx *fiber.Ctx) error
	Decide(ctx *fiber.Ctx) error
	AddParticipant(ctx *fiber.Ctx) error
	Requests(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	ToggleSuggestions(ctx *fiber.Ctx) error
	ToggleDiscoverability(ctx *fiber.Ctx) error
	ToggleMyDiscoverability(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("hosted", c.Hosted)
	h.Get("available", c.Available)
	h.Get("invitations", c.MyInvitations)
	h.Post("invitations/:sessionId/respond", c.RespondInvite)
	h.Post("join", c.Join)
	h.Patch("me/discoverability", c.ToggleMyDiscoverability)
	h.Get(":code", c.Detail)
	h.Delete(":code", c.Delete)
	h.Get(":code/status", c.Status)
	h.Get(":code/messages", c.Messages)
	h.Get(":code/requests", c.Requests)
	h.Post(":code/invite", c.Invite)
	h.Post(":code/decide", c.Decide)
	h.Post(":code/participants", c.AddParticipant)
	h.Patch(":code/suggestions", c.ToggleSuggestions)
	h.Patch(":code/discoverability", c.ToggleDiscoverability)
}

// mapServiceError turns domain sentinels into HTTP responses. Anything
// unmapped bubbles to the error handler middleware as a 500.
func mapServiceError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionInactive),
		errors.Is(err, service.ErrParticipantNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrSessionFull):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrParticipantBlocked):
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, err.Error()))
	case errors.Is(err, service.ErrInvalidTarget),
		errors.Is(err, service.ErrAlreadyParticipant):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return err
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	session, err := c.sessionService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", session))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	if err := c.sessionService.DeleteSession(ctx.Context(), userId, ctx.Params("code")); err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *sessionController) Detail(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.sessionService.SessionDetail(ctx.Context(), userId, ctx.Params("code"))
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Hosted(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.sessionService.HostedSessions(ctx.Context(), userId)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list hosted sessions", res))
}

func (c *sessionController) Available(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.sessionService.AvailableSessions(ctx.Context(), userId)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list available sessions", res))
}

func (c *sessionController) Join(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.JoinWithCodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	participant, err := c.sessionService.JoinWithCode(ctx.Context(), userId, req.RoomCode)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Join request registered", fiber.Map{
		"status":    participant.Status,
		"room_code": req.RoomCode,
	}))
}

func (c *sessionController) Invite(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.InviteParticipantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.sessionService.InviteParticipant(ctx.Context(), userId, ctx.Params("code"), req.Username); err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Invitation sent", nil))
}

func (c *sessionController) MyInvitations(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.sessionService.MyInvitations(ctx.Context(), userId)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list invitations", res))
}

func (c *sessionController) RespondInvite(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	var req dto.RespondInviteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.sessionService.RespondInvite(ctx.Context(), userId, sessionId, req.Action); err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Invitation "+req.Action, nil))
}

func (c *sessionController) Decide(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.DecideRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	newStatus, err := c.sessionService.Decide(ctx.Context(), userId, ctx.Params("code"), req.Username, req.Action)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Decision applied", fiber.Map{
		"username": req.Username,
		"status":   newStatus,
	}))
}

func (c *sessionController) AddParticipant(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AddParticipantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.sessionService.AddParticipant(ctx.Context(), userId, ctx.Params("code"), req.Username); err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Participant added", nil))
}

func (c *sessionController) Requests(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.sessionService.SessionRequests(ctx.Context(), userId, ctx.Params("code"))
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list requests", res))
}

func (c *sessionController) Status(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	status, err := c.sessionService.CheckStatus(ctx.Context(), userId, ctx.Params("code"))
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Participant status", fiber.Map{"status": status}))
}

func (c *sessionController) Messages(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	limit := ctx.QueryInt("limit", 50)

	messages, err := c.sessionService.ChatHistory(ctx.Context(), userId, ctx.Params("code"), limit)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list messages", messages))
}

func (c *sessionController) ToggleSuggestions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	enabled, err := c.sessionService.ToggleSuggestions(ctx.Context(), userId, ctx.Params("code"))
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Suggestions toggled", fiber.Map{"enabled": enabled}))
}

func (c *sessionController) ToggleDiscoverability(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	enabled, err := c.sessionService.ToggleDiscoverability(ctx.Context(), userId, ctx.Params("code"))
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Discoverability toggled", fiber.Map{"enabled": enabled}))
}

func (c *sessionController) ToggleMyDiscoverability(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	enabled, err := c.sessionService.ToggleUserDiscoverability(ctx.Context(), userId)
	if err != nil {
		return mapServiceError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Profile discoverability toggled", fiber.Map{"discoverable": enabled}))
}
