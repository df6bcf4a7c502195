package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"setlist-sync/internal/api/handlers"
	apimiddleware "setlist-sync/internal/api/middleware"
	"setlist-sync/internal/config"
	"setlist-sync/internal/infrastructure/mysql"
	redisstore "setlist-sync/internal/infrastructure/redis"
	"setlist-sync/internal/infrastructure/websocket"
	"setlist-sync/internal/services"
	"setlist-sync/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting Setlist Sync Server")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Repositories
	userRepo := mysql.NewMySQLUserRepository(db)
	bandRepo := mysql.NewMySQLBandRepository(db)
	songRepo := mysql.NewMySQLSongRepository(db)
	setlistRepo := mysql.NewMySQLSetlistRepository(db)
	tokenStore := redisstore.NewRedisTokenStore(rdb)

	// Real-time core: presence, groups, routing and the notification gateway
	presence := websocket.NewPresenceRegistry(log)
	groups := websocket.NewGroupManager(log)
	router := websocket.NewEventRouter(groups, log)
	notifier := websocket.NewNotifier(presence, groups, log)

	// Services
	authService := services.NewAuthService(userRepo, tokenStore, cfg.JWT, log)
	bandService := services.NewBandService(bandRepo, userRepo, log)
	songService := services.NewSongService(songRepo, bandRepo, notifier, log)
	setlistService := services.NewSetlistService(setlistRepo, songRepo, bandRepo, notifier, log)
	maintenance := services.NewMaintenanceScheduler(bandRepo, log)

	wsHandler := websocket.NewHandler(authService, bandRepo, presence, groups, router, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORS.Origin},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	bandHandler := handlers.NewBandHandler(bandService, log)
	songHandler := handlers.NewSongHandler(songService, log)
	setlistHandler := handlers.NewSetlistHandler(setlistService, log)
	socketHandler := handlers.NewWebSocketHandler(wsHandler, presence)

	requireAuth := apimiddleware.RequireAuth(authService)

	// API routes
	api := e.Group("/api/v1")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh-token", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout, requireAuth)
	api.GET("/auth/me", authHandler.Me, requireAuth)

	bands := api.Group("/bands", requireAuth)
	bands.POST("", bandHandler.Create)
	bands.GET("", bandHandler.List)
	bands.GET("/:bandId", bandHandler.Get)
	bands.PUT("/:bandId", bandHandler.Update)
	bands.DELETE("/:bandId", bandHandler.Delete)
	bands.POST("/:bandId/members", bandHandler.AddMember)
	bands.DELETE("/:bandId/members/:userId", bandHandler.RemoveMember)
	bands.POST("/:bandId/invite", bandHandler.GenerateInvite)
	api.POST("/bands/join", bandHandler.JoinByInvite, requireAuth)

	songs := api.Group("/songs", requireAuth)
	songs.POST("", songHandler.Create)
	songs.GET("", songHandler.List)
	songs.GET("/:songId", songHandler.Get)
	songs.PUT("/:songId", songHandler.Update)
	songs.DELETE("/:songId", songHandler.Delete)

	setlists := api.Group("/setlists", requireAuth)
	setlists.POST("", setlistHandler.Create)
	setlists.GET("", setlistHandler.List)
	setlists.GET("/:setlistId", setlistHandler.Get)
	setlists.PUT("/:setlistId", setlistHandler.Update)
	setlists.DELETE("/:setlistId", setlistHandler.Delete)
	setlists.POST("/:setlistId/songs", setlistHandler.AddSong)
	setlists.PUT("/:setlistId/songs/reorder", setlistHandler.Reorder)
	setlists.PUT("/:setlistId/songs/:songId", setlistHandler.UpdateSong)
	setlists.DELETE("/:setlistId/songs/:songId", setlistHandler.RemoveSong)

	// Websocket endpoint authenticates in the handshake itself
	e.GET("/ws", socketHandler.HandleConnection)
	api.GET("/presence", socketHandler.ActiveUsers, requireAuth)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "setlist-sync",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Background maintenance
	if err := maintenance.Start(); err != nil {
		log.Error("Failed to start maintenance scheduler", "error", err)
		os.Exit(1)
	}

	serverAddr := cfg.Addr()
	log.Info("Starting server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down setlist sync server...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	maintenance.Stop()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Setlist sync server stopped")
}
