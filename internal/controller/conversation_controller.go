package controller

import (
	"teamcollab-be/internal/dto"
	"teamcollab-be/internal/pkg/serverutils"
	"teamcollab-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	PostMessage(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	GenerateSummary(ctx *fiber.Ctx) error
	CurrentSummary(ctx *fiber.Ctx) error
	MuteAssistant(ctx *fiber.Ctx) error
	AddAssistant(ctx *fiber.Ctx) error
	RemoveAssistant(ctx *fiber.Ctx) error
	SetAssistantTone(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
}

func NewConversationController(conversationService service.IConversationService) IConversationController {
	return &conversationController{
		conversationService: conversationService,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":id/messages", c.PostMessage)
	h.Get(":id/messages", c.ListMessages)
	h.Post(":id/reset", c.Reset)
	h.Post(":id/summary", c.GenerateSummary)
	h.Get(":id/summary", c.CurrentSummary)
	h.Post(":id/assistants", c.AddAssistant)
	h.Delete(":id/assistants/:assistantId", c.RemoveAssistant)
	h.Put(":id/assistants/:assistantId/mute", c.MuteAssistant)
	h.Put(":id/assistants/:assistantId/tone", c.SetAssistantTone)
}

// identify returns the authenticated user and the conversation in the path.
func identify(ctx *fiber.Ctx) (int64, int64, error) {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return 0, 0, err
	}
	conversationId, err := serverutils.ParamId(ctx, "id")
	if err != nil {
		return 0, 0, err
	}
	return userId, conversationId, nil
}

func (c *conversationController) PostMessage(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}

	var req dto.PostMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.PostMessage(ctx.UserContext(), userId, conversationId, &req)
	if err != nil {
		return err
	}

	// Replies arrive over the conversation socket.
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Message accepted", res))
}

func (c *conversationController) ListMessages(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.ListMessages(ctx.UserContext(), userId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *conversationController) Reset(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.ResetConversation(ctx.UserContext(), userId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset conversation", res))
}

func (c *conversationController) GenerateSummary(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.GenerateSummary(ctx.UserContext(), userId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate summary", res))
}

func (c *conversationController) CurrentSummary(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.CurrentSummary(ctx.UserContext(), userId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show summary", res))
}

func (c *conversationController) MuteAssistant(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}
	assistantId, err := serverutils.ParamId(ctx, "assistantId")
	if err != nil {
		return err
	}

	var req dto.MuteAssistantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.SetAssistantMuted(ctx.UserContext(), userId, conversationId, assistantId, *req.Muted)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update assistant", res))
}

func (c *conversationController) AddAssistant(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}

	var req dto.AddAssistantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.AddAssistant(ctx.UserContext(), userId, conversationId, req.AssistantId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success add assistant", res))
}

func (c *conversationController) RemoveAssistant(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}
	assistantId, err := serverutils.ParamId(ctx, "assistantId")
	if err != nil {
		return err
	}

	if err := c.conversationService.RemoveAssistant(ctx.UserContext(), userId, conversationId, assistantId); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *conversationController) SetAssistantTone(ctx *fiber.Ctx) error {
	userId, conversationId, err := identify(ctx)
	if err != nil {
		return err
	}
	assistantId, err := serverutils.ParamId(ctx, "assistantId")
	if err != nil {
		return err
	}

	var req dto.SetToneRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.SetAssistantTone(ctx.UserContext(), userId, conversationId, assistantId, req.Tone)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update assistant", res))
}
