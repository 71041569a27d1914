package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/furkantngr/ragchatbot/internal/bootstrap"
	"github.com/furkantngr/ragchatbot/internal/config"
	"github.com/furkantngr/ragchatbot/internal/pkg/serverutils"
)

type Server struct {
	app  *fiber.App
	port string
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // PDFs can be large
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(serverutils.ErrorHandlerMiddleware())

	return app
}

// NewChat assembles the user-facing chat server.
func NewChat(cfg *config.Config, c *bootstrap.ChatContainer) *Server {
	app := newApp(cfg)
	c.ChatController.RegisterRoutes(app)
	return &Server{app: app, port: cfg.App.ChatPort}
}

// NewAdmin assembles the administrative server.
func NewAdmin(cfg *config.Config, c *bootstrap.AdminContainer) *Server {
	app := newApp(cfg)
	c.AdminController.RegisterRoutes(app, serverutils.NewJwtMiddleware(cfg.App.JWTSecret))
	return &Server{app: app, port: cfg.App.AdminPort}
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.port)
	return s.app.Listen(":" + s.port)
}
