package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"debatecraft/config"
	"debatecraft/db"
	"debatecraft/pkg/logger"
	"debatecraft/routes"
	"debatecraft/services"
	"debatecraft/speech"
	"debatecraft/store"
	"debatecraft/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Server.Mode)
	defer logger.Log.Sync()

	ctx := context.Background()

	ai, err := services.NewAIClient(ctx, services.AIConfig{
		ApiKey:  cfg.Gemini.ApiKey,
		Model:   cfg.Gemini.Model,
		Timeout: time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Log.Fatal("failed to initialize AI client", zap.Error(err))
	}
	if !ai.Configured() {
		logger.Log.Warn("AI client not configured, debate features disabled until a credential is supplied")
	}

	profiles := buildStore(cfg)

	deps := routes.Deps{
		AI:       ai,
		Sessions: services.NewSessionManager(),
		Store:    profiles,
		Hub:      websocket.NewProgressHub(),
		Speech:   speech.Unavailable{},
		Policy: services.SessionPolicy{
			RoundLimit: cfg.Session.RoundLimit,
			TimeLimit:  time.Duration(cfg.Session.TimeLimitSeconds) * time.Second,
		},
	}

	router := setupRouter(cfg, deps)
	port := strconv.Itoa(cfg.Server.Port)
	logger.Log.Info("server starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}

// buildStore selects the profile store from configuration. Mongo mode wraps
// the database store in the resilient mirror; local mode is purely in-memory.
func buildStore(cfg *config.Config) store.ProfileStore {
	if cfg.Store.Mode == "local" {
		logger.Log.Info("using in-memory profile store")
		return store.NewLocalStore()
	}

	database, err := db.Connect(cfg.Database.URI)
	if err != nil {
		logger.Log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	logger.Log.Info("connected to MongoDB")
	return store.NewResilient(store.NewMongoStore(database))
}

func setupRouter(cfg *config.Config, deps routes.Deps) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.Setup(router, deps)
	return router
}
