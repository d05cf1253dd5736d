package controller

import (
	"strings"

	"lola-discovery-be/internal/dto"
	"lola-discovery-be/internal/pkg/serverutils"
	"lola-discovery-be/internal/service"
	"lola-discovery-be/pkg/flow"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	SubmitAnswer(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session")
	h.Post("/start", c.Start)
	h.Get("/summary/:id", c.Summary)
	h.Post("/:id/answer", c.SubmitAnswer)
	h.Get("/:id/summary", c.Summary)
	h.Delete("/:id", c.Delete)
}

// sessionID parses the :id param. Malformed ids cannot name a session.
func sessionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, flow.ErrSessionNotFound
	}
	return id, nil
}

func clientIP(ctx *fiber.Ctx) string {
	if fwd := ctx.Get(fiber.HeaderXForwardedFor); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if realIP := ctx.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	return ctx.IP()
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
	}

	client := dto.ClientInfo{
		IpAddress: clientIP(ctx),
		UserAgent: req.UserAgent,
	}
	if client.UserAgent == "" {
		client.UserAgent = ctx.Get(fiber.HeaderUserAgent)
	}

	res, err := c.service.Start(ctx.UserContext(), client)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session started", res))
}

func (c *sessionController) SubmitAnswer(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Answer == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields")
	}

	res, err := c.service.SubmitAnswer(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}

	message := "Answer accepted"
	if res.Completed {
		message = "Questionnaire completed"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *sessionController) Summary(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetSummary(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session summary", res))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		// nothing to delete
		return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
	}

	if err := c.service.DeleteSession(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}
