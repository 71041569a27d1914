package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/furkantngr/ragchatbot/internal/dto"
	"github.com/furkantngr/ragchatbot/internal/pkg/serverutils"
	"github.com/furkantngr/ragchatbot/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{chatService: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", c.Health)
	api := r.Group("/api")
	api.Post("/ask", c.Ask)
	api.Post("/refresh", c.Refresh)
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "active", "mode": "text-only"})
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	answer, err := c.chatService.Ask(ctx.Context(), req.Query, req.Mode, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(dto.AskResponse{Response: answer})
}

// Refresh is the receiving side of the cross-process refresh signal.
func (c *chatController) Refresh(ctx *fiber.Ctx) error {
	if err := c.chatService.Refresh(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session refreshed", nil))
}
