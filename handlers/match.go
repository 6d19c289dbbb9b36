// handlers/match.go
package handlers

import (
	"arcade-match-system/middleware"
	"arcade-match-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	// 🔐 All match routes require user context from the gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/matches", matchService.GetActiveMatches)
	secured.Get("/matches/:id", matchService.GetMatchByID)
	secured.Post("/matches", matchService.CreateMatch)
	secured.Post("/matches/:id/join", matchService.JoinMatch)
	secured.Post("/matches/:id/finish", matchService.FinishMatch)
}
