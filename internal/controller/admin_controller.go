package controller

import (
	"fmt"
	"time"

	"lola-discovery-be/internal/dto"
	"lola-discovery-be/internal/pkg/serverutils"
	"lola-discovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	ListResponses(ctx *fiber.Ctx) error
	ShowResponse(ctx *fiber.Ctx) error
	DeleteResponse(ctx *fiber.Ctx) error
	Cleanup(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
}

type adminController struct {
	responseService  service.IResponseService
	sessionService   service.ISessionService
	defaultStaleMins int
}

func NewAdminController(
	responseService service.IResponseService,
	sessionService service.ISessionService,
	defaultStaleMins int,
) IAdminController {
	return &adminController{
		responseService:  responseService,
		sessionService:   sessionService,
		defaultStaleMins: defaultStaleMins,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Get("/responses", c.ListResponses)
	h.Get("/response/:id", c.ShowResponse)
	h.Delete("/response/:id", c.DeleteResponse)
	h.Post("/cleanup", c.Cleanup)
	h.Get("/export", c.Export)
}

func (c *adminController) ListResponses(ctx *fiber.Ctx) error {
	var req dto.AdminResponseListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	res, err := c.responseService.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get responses", res))
}

func (c *adminController) ShowResponse(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	res, err := c.responseService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get response", res))
}

func (c *adminController) DeleteResponse(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	if err := c.responseService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Response deleted", nil))
}

func (c *adminController) Cleanup(ctx *fiber.Ctx) error {
	req := dto.AdminCleanupRequest{Minutes: c.defaultStaleMins}
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	removed, err := c.sessionService.CleanupStale(ctx.UserContext(), req.Minutes)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Cleanup finished", dto.AdminCleanupResponse{
		Removed:          removed,
		ThresholdMinutes: req.Minutes,
	}))
}

func (c *adminController) Export(ctx *fiber.Ctx) error {
	if format := ctx.Query("format", "csv"); format != "csv" {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Unsupported export format: %s", format))
	}

	filename := fmt.Sprintf("lola_responses_%s.csv", time.Now().UTC().Format("20060102_150405"))
	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	return c.responseService.ExportCSV(ctx.UserContext(), ctx.Response().BodyWriter())
}
