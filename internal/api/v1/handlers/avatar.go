package handlers

import (
	"database/sql"
	"io"

	"task-manager-api/internal/config"
	"task-manager-api/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Avatar handling

// maxAvatarSize membatasi upload avatar sampai 1MB
const maxAvatarSize = 1 << 20

// UploadAvatar menangani POST /users/me/avatar. Gambar disimpan sebagai
// binary di baris user, bukan di filesystem.
func UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	file, err := c.FormFile("avatar")
	if err != nil {
		logger.ErrorLogger.Error("Error uploading avatar", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error": "Please upload an image",
		})
	}

	if file.Size > maxAvatarSize {
		return c.Status(400).JSON(fiber.Map{
			"error": "Avatar must be smaller than 1MB",
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.ErrorLogger.Error("Error opening avatar upload", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error saving avatar",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		logger.ErrorLogger.Error("Error reading avatar upload", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error saving avatar",
		})
	}

	// Content type disniff dari isi file, header dari client tidak dipercaya
	contentType := mimetype.Detect(data).String()
	if contentType != "image/jpeg" && contentType != "image/png" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Please upload a jpg or png image",
		})
	}

	_, err = config.DB.Exec(
		"UPDATE users SET avatar = $1, avatar_type = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3",
		data, contentType, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error saving avatar", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error saving avatar",
		})
	}

	logger.AuditLogger.Info("Avatar uploaded", zap.Int("user_id", userID), zap.Int64("size", file.Size))
	return c.JSON(fiber.Map{
		"message": "Avatar uploaded successfully",
	})
}

// DeleteAvatar menangani DELETE /users/me/avatar
func DeleteAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	_, err := config.DB.Exec(
		"UPDATE users SET avatar = NULL, avatar_type = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = $1",
		userID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting avatar", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error deleting avatar",
		})
	}

	logger.AuditLogger.Info("Avatar deleted", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "Avatar deleted successfully",
	})
}

// GetAvatar menangani GET /users/:id/avatar. Endpoint ini publik.
func GetAvatar(c *fiber.Ctx) error {
	targetID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Avatar not found",
		})
	}

	var avatar []byte
	var avatarType sql.NullString
	err = config.DB.QueryRow(
		"SELECT avatar, avatar_type FROM users WHERE id = $1",
		targetID).Scan(&avatar, &avatarType)
	if err != nil || len(avatar) == 0 || !avatarType.Valid {
		return c.Status(404).JSON(fiber.Map{
			"error": "Avatar not found",
		})
	}

	c.Set("Content-Type", avatarType.String)
	return c.Send(avatar)
}
