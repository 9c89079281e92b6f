package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"retention-flow-be/internal/dto"
	"retention-flow-be/internal/pkg/serverutils"
	"retention-flow-be/internal/service"
	"retention-flow-be/pkg/wizard"
)

type IFlowController interface {
	RegisterRoutes(r fiber.Router)
	GetContext(ctx *fiber.Ctx) error
	StartSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	AdvanceSession(ctx *fiber.Ctx) error
	CloseSession(ctx *fiber.Ctx) error
	AcceptDownsell(ctx *fiber.Ctx) error
	CompleteCancellation(ctx *fiber.Ctx) error
}

type flowController struct {
	service service.FlowService
}

func NewFlowController(service service.FlowService) IFlowController {
	return &flowController{service: service}
}

func (c *flowController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/flow")
	h.Get("/context", c.GetContext)
	h.Post("/session", c.StartSession)
	h.Get("/session/:id", c.GetSession)
	h.Post("/session/:id/advance", c.AdvanceSession)
	h.Delete("/session/:id", c.CloseSession)
	h.Post("/downsell/accept", c.AcceptDownsell)
	h.Post("/cancel", c.CompleteCancellation)
}

func (c *flowController) GetContext(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Query("user_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid user_id"))
	}

	res, err := c.service.GetFlowContext(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Flow context", res))
}

func (c *flowController) StartSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.StartSession(ctx.Context(), req.UserId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session started", res))
}

func (c *flowController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.Context(), ctx.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session state", res))
}

func (c *flowController) AdvanceSession(ctx *fiber.Ctx) error {
	var req dto.AdvanceSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.AdvanceSession(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		case errors.Is(err, service.ErrUnknownEvent):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Unknown event"))
		}
		var validationErr *wizard.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, validationErr.Error()))
		}
		var transitionErr *wizard.TransitionError
		if errors.As(err, &transitionErr) {
			return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, transitionErr.Error()))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session advanced", res))
}

func (c *flowController) CloseSession(ctx *fiber.Ctx) error {
	if err := c.service.CloseSession(ctx.Context(), ctx.Params("id")); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session closed", nil))
}

func (c *flowController) AcceptDownsell(ctx *fiber.Ctx) error {
	var req dto.AcceptDownsellRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.AcceptDownsell(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusPaymentRequired).JSON(serverutils.ErrorResponse(402, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Downsell accepted", res))
}

func (c *flowController) CompleteCancellation(ctx *fiber.Ctx) error {
	var req dto.CompleteCancellationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.CompleteCancellation(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cancellation recorded", res))
}
