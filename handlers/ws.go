// handlers/ws.go
package handlers

import (
	"arcade-match-system/relay"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupRelayRoutes mounts the live match relay. Authentication happened
// at the gateway before the upgrade; the relay trusts the userId the
// client presents in its join frame.
func SetupRelayRoutes(app *fiber.App, hub *relay.Hub) {
	app.Use("/game-ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/game-ws", websocket.New(hub.ServeConn))
}
