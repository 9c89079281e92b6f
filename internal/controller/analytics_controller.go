package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"retention-flow-be/internal/dto"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/pkg/serverutils"
	"retention-flow-be/internal/service"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	TrackEvent(ctx *fiber.Ctx) error
	GetDailyMetrics(ctx *fiber.Ctx) error
	GetRealtimeMetrics(ctx *fiber.Ctx) error
	GetCohorts(ctx *fiber.Ctx) error
	RunETL(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type analyticsController struct {
	service service.AnalyticsService
	etl     service.ETLService
	log     logger.ILogger
}

func NewAnalyticsController(svc service.AnalyticsService, etl service.ETLService, log logger.ILogger) IAnalyticsController {
	return &analyticsController{service: svc, etl: etl, log: log}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analytics")
	h.Post("/events", c.TrackEvent)
	h.Get("/metrics/daily", c.GetDailyMetrics)
	h.Get("/metrics/realtime", c.GetRealtimeMetrics)
	h.Get("/cohorts", c.GetCohorts)

	// Operational trigger; schedulers hit this or run cmd/etl directly.
	h.Post("/etl/run", serverutils.JwtMiddleware, c.RunETL)

	// Log viewer for the dashboard.
	h.Get("/logs", serverutils.JwtMiddleware, c.GetLogs)
	h.Get("/logs/:id", serverutils.JwtMiddleware, c.GetLogDetail)
}

func (c *analyticsController) TrackEvent(ctx *fiber.Ctx) error {
	var req dto.TrackEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.service.TrackEvent(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Event accepted", nil))
}

func (c *analyticsController) GetDailyMetrics(ctx *fiber.Ctx) error {
	days, _ := strconv.Atoi(ctx.Query("days", "30"))

	res, err := c.service.GetDailyMetrics(ctx.Context(), days)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Daily metrics", res))
}

func (c *analyticsController) GetRealtimeMetrics(ctx *fiber.Ctx) error {
	res, err := c.service.GetRealtimeMetrics(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Realtime metrics", res))
}

func (c *analyticsController) GetCohorts(ctx *fiber.Ctx) error {
	res, err := c.service.GetCohorts(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cohorts", res))
}

func (c *analyticsController) RunETL(ctx *fiber.Ctx) error {
	var req dto.RunETLRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		}
	}

	res, err := c.etl.Run(ctx.Context(), req.Days)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("ETL run finished", res))
}

func (c *analyticsController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	level := ctx.Query("level", "")

	logs, err := c.log.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *analyticsController) GetLogDetail(ctx *fiber.Ctx) error {
	// Log ids are content hashes, not UUIDs.
	entry, err := c.log.GetLogById(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Log not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", entry))
}
