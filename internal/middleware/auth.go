package middleware

import (
	"strings"

	"task-manager-api/internal/config"
	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// unauthorized mengembalikan respons 401 yang seragam. Sengaja tidak ada
// detail pemeriksaan mana yang gagal.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Please authenticate.",
	})
}

func RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c)
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return unauthorized(c)
	}
	tokenString := parts[1]

	userID, err := config.Tokens.Parse(tokenString)
	if err != nil {
		logger.SecurityLogger.Warn("Invalid token", zap.Error(err))
		return unauthorized(c)
	}

	// Ambil user pemilik token dari database
	var user models.User
	err = config.DB.QueryRow(
		"SELECT id, name, email, password, age, tokens, created_at, updated_at FROM users WHERE id = $1",
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Age,
		pq.Array(&user.Tokens), &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.SecurityLogger.Warn("Token for unknown user", zap.Int("user_id", userID))
		return unauthorized(c)
	}

	// Token harus masih ada di daftar token aktif milik user,
	// logout menghapusnya dari daftar
	active := false
	for _, t := range user.Tokens {
		if t == tokenString {
			active = true
			break
		}
	}
	if !active {
		logger.SecurityLogger.Warn("Revoked token used", zap.Int("user_id", userID))
		return unauthorized(c)
	}

	c.Locals("userID", user.ID)
	c.Locals("user", user)
	c.Locals("token", tokenString)
	return c.Next()
}
