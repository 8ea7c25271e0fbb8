package controller

import (
	"teamcollab-be/internal/pkg/serverutils"
	"teamcollab-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMetricsController interface {
	RegisterRoutes(r fiber.Router)
	ConversationStatistics(ctx *fiber.Ctx) error
	CompanyCosts(ctx *fiber.Ctx) error
	BudgetStatus(ctx *fiber.Ctx) error
}

type metricsController struct {
	metricsService service.IMetricsService
}

func NewMetricsController(metricsService service.IMetricsService) IMetricsController {
	return &metricsController{
		metricsService: metricsService,
	}
}

func (c *metricsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/metrics/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("conversation/:id", c.ConversationStatistics)
	h.Get("company/:id/costs", c.CompanyCosts)
	h.Get("company/:id/budget", c.BudgetStatus)
}

func (c *metricsController) ConversationStatistics(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}

	res, err := c.metricsService.ConversationStatistics(ctx.UserContext(), userId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show conversation statistics", res))
}

func (c *metricsController) CompanyCosts(ctx *fiber.Ctx) error {
	userId, companyId, err := identify(ctx)
	if err != nil {
		return err
	}

	res, err := c.metricsService.CompanyCosts(ctx.UserContext(), userId, companyId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show company costs", res))
}

func (c *metricsController) BudgetStatus(ctx *fiber.Ctx) error {
	userId, companyId, err := identify(ctx)
	if err != nil {
		return err
	}

	res, err := c.metricsService.BudgetStatus(ctx.UserContext(), userId, companyId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show budget status", res))
}
