package config

import (
	"context"
	"database/sql"

	"task-manager-api/internal/websocket"
	"task-manager-api/pkg/mailer"
	"task-manager-api/pkg/token"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

var (
	// Global dependency yang akan digunakan di seluruh aplikasi
	DB          *sql.DB
	Validate    = validator.New()
	Ctx         = context.Background()
	RedisClient *redis.Client

	// Diisi di main/test setup dari configs (secret dan API key tidak
	// dibaca langsung dari env di dalam handler)
	Tokens     *token.Service
	Mailer     *mailer.Mailer
	TaskEvents *websocket.Hub
)
