package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/buuzzer/internal/api/handlers"
	"github.com/yoockh/buuzzer/internal/api/middleware"
)

type Deps struct {
	Auth        middleware.JWTConfig
	Preferences *handlers.PreferencesHandler
	Copilot     *handlers.CopilotWSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.Auth))

	auth.GET("/preferences/me", d.Preferences.Me)
	auth.PUT("/preferences/update", d.Preferences.Update)

	// WebSocket
	auth.GET("/ws/copilot", d.Copilot.Copilot)
}
