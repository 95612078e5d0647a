package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tugas-go/internal/api/v1/handlers"
	"tugas-go/internal/middleware"
	"tugas-go/pkg/logger"
)

// NewApp builds the Fiber app with the shared middleware and all routes.
func NewApp(h *handlers.Handler, verifier middleware.Verifier, log *logger.Loggers, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tugas-go",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(requestid.New())
	app.Use(middleware.ErrorHandler(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	RegisterRoutes(app, h, verifier, log)
	return app
}

func RegisterRoutes(app *fiber.App, h *handlers.Handler, verifier middleware.Verifier, log *logger.Loggers) {
	auth := middleware.RequireToken(verifier, log.Security)

	app.Get("/health", h.Health)

	// User
	app.Post("/registeruser", h.Register)
	app.Post("/loginuser", h.Login)
	app.Put("/updateuser/:id", auth, h.UpdateUser)
	app.Delete("/deleteuser/:id", auth, h.DeleteUser)

	// Task
	app.Post("/createtask", auth, h.CreateTask)
	app.Get("/readtaskbyid/:id", auth, h.GetTask)
	app.Get("/readtasksbyuid/:id", auth, h.ListTasks)
	app.Put("/updatetaskbyid/:id", auth, h.UpdateTask)
	app.Delete("/deletetaskbyid/:id", auth, h.DeleteTask)
}
