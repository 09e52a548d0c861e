package setup

import (
	"memo-app/app"
	"memo-app/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	fiberApp.Get("/health", handlers.Health(application))
	if application.Metrics != nil {
		fiberApp.Get("/metrics", adaptor.HTTPHandler(application.Metrics.Handler()))
	}

	api := fiberApp.Group("/api")

	api.Get("/memos", handlers.ListMemos(application))
	api.Post("/memos", handlers.CreateMemo(application))
	api.Get("/memos/:id", handlers.GetMemo(application))
	api.Put("/memos/:id", handlers.UpdateMemo(application))
	api.Delete("/memos/:id", handlers.DeleteMemo(application))

	api.Get("/memos/:id/comments", handlers.ListComments(application))
	api.Post("/memos/:id/comments", handlers.CreateComment(application))
	api.Put("/memos/:id/comments/:commentId", handlers.UpdateComment(application))
	api.Delete("/memos/:id/comments/:commentId", handlers.DeleteComment(application))

	api.Get("/export", handlers.ExportMemos(application))
	api.Post("/import", handlers.ImportMemos(application))
	api.Post("/reload", handlers.ReloadMemos(application))
}
