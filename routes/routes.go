// Package routes maps the HTTP surface onto the controllers.
package routes

import (
	"debatecraft/controllers"
	"debatecraft/services"
	"debatecraft/speech"
	"debatecraft/store"
	"debatecraft/websocket"

	"github.com/gin-gonic/gin"
)

// Deps is everything the route handlers need.
type Deps struct {
	AI       *services.AIClient
	Sessions *services.SessionManager
	Store    store.ProfileStore
	Hub      *websocket.ProgressHub
	Speech   speech.Capability
	Policy   services.SessionPolicy
}

// Setup registers all routes on the router.
func Setup(router *gin.Engine, deps Deps) {
	debate := &controllers.DebateController{
		AI:       deps.AI,
		Sessions: deps.Sessions,
		Store:    deps.Store,
		Hub:      deps.Hub,
		Speech:   deps.Speech,
		Policy:   deps.Policy,
	}
	modules := &controllers.ModuleController{Store: deps.Store, Hub: deps.Hub}
	profiles := &controllers.ProfileController{Store: deps.Store}

	router.GET("/modules", modules.ListModules)
	router.GET("/modules/:id", modules.GetModule)
	router.POST("/modules/:id/complete", modules.CompleteModule)

	router.GET("/debate/topics", debate.ListTopics)
	router.POST("/debate/session", debate.CreateSession)
	router.GET("/debate/session/:id", debate.GetSession)
	router.POST("/debate/session/:id/topic", debate.SelectTopic)
	router.POST("/debate/session/:id/side", debate.SelectSide)
	router.POST("/debate/session/:id/argument", debate.SubmitArgument)
	router.POST("/debate/session/:id/end", debate.EndSession)
	router.GET("/debate/ai/health", debate.AIHealth)
	router.POST("/debate/ai/credential", debate.SetCredential)

	router.GET("/profile/:id", profiles.GetProfile)
	router.POST("/profile", profiles.CreateProfile)
	router.GET("/achievements", profiles.ListAchievements)

	router.GET("/ws/progress", deps.Hub.Handler)
}
