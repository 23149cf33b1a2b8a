package main

import (
	"fmt"
	"time"

	"task-manager-api/configs"
	v1 "task-manager-api/internal/api/v1"
	"task-manager-api/internal/config"
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/repository"
	myws "task-manager-api/internal/websocket"
	"task-manager-api/pkg/database"
	"task-manager-api/pkg/logger"
	"task-manager-api/pkg/mailer"
	"task-manager-api/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	// Inisialisasi logger
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	// Load config
	cfg := configs.LoadConfig()
	// Inisialisasi database
	config.DB = database.ConnectDB(cfg)
	defer config.DB.Close()

	logger.SystemLogger.Info("Database Connected")

	// Buat tabel jika belum ada
	repository.CreateTableIfNotExists(config.DB)

	// Inisialisasi Redis
	config.RedisClient = database.ConnectRedis(cfg)
	defer config.RedisClient.Close()

	// Token service dan mailer dibangun dari config, bukan baca env sendiri
	config.Tokens = token.NewService(cfg.JWTSecret)
	config.Mailer = mailer.NewMailer(cfg.SendGridAPIKey, cfg.EmailFrom)

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	// Daftarkan route API
	v1.RegisterRoutes(app)

	// WebSocket untuk streaming event task
	hub := myws.NewHub()
	config.TaskEvents = hub
	go hub.Run()
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		client := &myws.Client{Conn: c}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		// Tahan koneksi sampai client menutupnya
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.Port))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
