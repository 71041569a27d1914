package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/furkantngr/ragchatbot/internal/dto"
	"github.com/furkantngr/ragchatbot/internal/pkg/serverutils"
	"github.com/furkantngr/ragchatbot/internal/service"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
}

type adminController struct {
	adminService service.IAdminService
	authService  service.IAuthService
}

func NewAdminController(
	adminService service.IAdminService,
	authService service.IAuthService,
) IAdminController {
	return &adminController{
		adminService: adminService,
		authService:  authService,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	api := r.Group("/api")
	api.Post("/auth/login", c.Login)
	// Peer refresh signal carries no credentials by design.
	api.Post("/refresh", c.Refresh)

	admin := api.Group("/admin")
	admin.Use(jwtMiddleware)

	admin.Get("/prompts/:mode", c.GetPrompt)
	admin.Put("/prompts/:mode", c.SavePrompt)

	admin.Get("/model", c.ModelInfo)
	admin.Put("/model", c.SetModel)

	admin.Get("/staging", c.ListStaging)
	admin.Post("/staging/upload", c.Upload)
	admin.Delete("/staging/:filename", c.DeleteStaging)
	admin.Post("/staging/:filename/publish", c.Publish)

	admin.Get("/production", c.ListProduction)
	admin.Post("/production/:filename/unpublish", c.Unpublish)

	admin.Get("/logs", c.Logs)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	token, err := c.authService.Login(req.Username, req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
	}
	return ctx.JSON(dto.LoginResponse{Token: token})
}

func (c *adminController) Refresh(ctx *fiber.Ctx) error {
	if err := c.adminService.Refresh(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session refreshed", nil))
}

func (c *adminController) GetPrompt(ctx *fiber.Ctx) error {
	mode := ctx.Params("mode")
	content := c.adminService.GetPrompt(mode)
	return ctx.JSON(dto.PromptResponse{Mode: mode, Content: content})
}

func (c *adminController) SavePrompt(ctx *fiber.Ctx) error {
	var req dto.SavePromptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	mode := ctx.Params("mode")
	if err := c.adminService.SavePrompt(ctx.Context(), mode, req.Content, c.username(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Prompt updated", nil))
}

func (c *adminController) ModelInfo(ctx *fiber.Ctx) error {
	current, available := c.adminService.ModelInfo()
	return ctx.JSON(dto.ModelInfoResponse{
		CurrentModel:    current,
		AvailableModels: available,
	})
}

func (c *adminController) SetModel(ctx *fiber.Ctx) error {
	var req dto.SetModelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.adminService.SetModel(ctx.Context(), req.ModelName, c.username(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Model updated: "+req.ModelName, nil))
}

func (c *adminController) ListStaging(ctx *fiber.Ctx) error {
	files, err := c.adminService.ListStaging()
	if err != nil {
		return err
	}
	return ctx.JSON(dto.FileListResponse{Files: files})
}

func (c *adminController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, "only PDF files are accepted")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	storedName, err := c.adminService.UploadStaging(fileHeader.Filename, src, c.username(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Added to staging as "+storedName, fiber.Map{"filename": storedName}))
}

func (c *adminController) DeleteStaging(ctx *fiber.Ctx) error {
	filename := ctx.Params("filename")
	if err := c.adminService.DeleteStaging(filename, c.username(ctx)); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("File deleted", nil))
}

// Publish accepts the document and returns immediately; indexing runs
// in the background.
func (c *adminController) Publish(ctx *fiber.Ctx) error {
	filename := ctx.Params("filename")
	if err := c.adminService.Publish(ctx.Context(), filename, c.username(ctx)); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Approved, processing...", nil))
}

func (c *adminController) ListProduction(ctx *fiber.Ctx) error {
	files, err := c.adminService.ListProduction()
	if err != nil {
		return err
	}
	return ctx.JSON(dto.FileListResponse{Files: files})
}

func (c *adminController) Unpublish(ctx *fiber.Ctx) error {
	filename := ctx.Params("filename")
	if err := c.adminService.Unpublish(ctx.Context(), filename, c.username(ctx)); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Moved back to staging", nil))
}

func (c *adminController) Logs(ctx *fiber.Ctx) error {
	entries, err := c.adminService.RecentActions(ctx.Context(), 100)
	if err != nil {
		return err
	}

	out := make([]dto.AdminLogResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.AdminLogResponse{
			Action:   e.Action,
			Filename: e.Filename,
			User:     e.Username,
			Date:     e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return ctx.JSON(out)
}

func (c *adminController) username(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals("username").(string); ok {
		return v
	}
	return "unknown"
}
