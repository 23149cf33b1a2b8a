package v1

import (
	"task-manager-api/internal/api/v1/handlers"
	"task-manager-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mendaftarkan semua route di root app.
// Path mengikuti kontrak API publik, tanpa prefix versi.
func RegisterRoutes(app *fiber.App) {
	// Auth (publik)
	app.Post("/users", handlers.Register)
	app.Post("/users/login", handlers.Login)

	// Avatar publik, bisa diakses tanpa token
	app.Get("/users/:id/avatar", handlers.GetAvatar)

	// User (butuh token)
	app.Post("/users/logout", middleware.RequireAuth, handlers.Logout)
	app.Post("/users/logoutAll", middleware.RequireAuth, handlers.LogoutAll)
	app.Get("/users/me", middleware.RequireAuth, handlers.GetProfile)
	app.Patch("/users/me", middleware.RequireAuth, handlers.UpdateProfile)
	app.Delete("/users/me", middleware.RequireAuth, handlers.DeleteProfile)
	app.Post("/users/me/avatar", middleware.RequireAuth, handlers.UploadAvatar)
	app.Delete("/users/me/avatar", middleware.RequireAuth, handlers.DeleteAvatar)

	// Task (butuh token)
	taskRoutes := app.Group("/tasks", middleware.RequireAuth)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Patch("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)
}
