// handlers/user.go
package handlers

import (
	"arcade-match-system/middleware"
	"arcade-match-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	// 🔓 Public routes — no user context, but still behind Gateway auth
	app.Post("/user", userService.AuthenticateWallet)
	app.Get("/leaderboard", userService.GetLeaderboard)

	// 🔐 Secured routes — require user context (userID), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/user/:id", userService.GetUser)
	secured.Post("/user/xp", userService.UpdateXP)
	secured.Post("/user/avatar", userService.UploadAvatar)

	// ✅ Creator applications — auth required, owner-scoped
	secured.Post("/creator-applications", userService.CreateCreatorApplication)
	secured.Get("/creator-applications", userService.ListCreatorApplications)
	secured.Get("/creator-applications/:id", userService.GetCreatorApplication)
}
