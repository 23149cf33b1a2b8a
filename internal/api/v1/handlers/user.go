package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"task-manager-api/internal/config"
	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// User handlers

// GetProfile menangani GET /users/me. User sudah dimuat oleh middleware.
func GetProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)
	return c.JSON(user)
}

// allowedUserUpdates adalah daftar field user yang boleh di-PATCH.
// Key di luar daftar ini ditolak sebelum menyentuh database.
var allowedUserUpdates = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// UpdateProfile menangani PATCH /users/me
func UpdateProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	// Parsing ke map supaya key yang dikirim bisa diperiksa satu per satu
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		logger.ErrorLogger.Error("Bad request in update profile", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error": "Bad request",
		})
	}

	var invalid []string
	for key := range patch {
		if !allowedUserUpdates[key] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		logger.AuditLogger.Warn("Invalid update keys", zap.Strings("fields", invalid))
		return c.Status(400).JSON(fiber.Map{
			"error":  "Invalid updates!",
			"fields": invalid,
		})
	}

	// Susun klausa SET hanya untuk field yang dikirim
	setClauses := []string{}
	args := []interface{}{}

	if raw, ok := patch["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid name"})
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return c.Status(400).JSON(fiber.Map{"error": "Name is required"})
		}
		args = append(args, name)
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
	}

	if raw, ok := patch["email"]; ok {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid email"})
		}
		email = strings.ToLower(strings.TrimSpace(email))
		if err := config.Validate.Var(email, "required,email"); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Email is invalid"})
		}
		args = append(args, email)
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", len(args)))
	}

	if raw, ok := patch["password"]; ok {
		var password string
		if err := json.Unmarshal(raw, &password); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid password"})
		}
		if len(password) < 7 || !validPassword(password) {
			return c.Status(400).JSON(fiber.Map{"error": "Password is invalid"})
		}
		// Password baru di-hash ulang sebelum disimpan
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "Error updating user"})
		}
		args = append(args, string(hashed))
		setClauses = append(setClauses, fmt.Sprintf("password = $%d", len(args)))
	}

	if raw, ok := patch["age"]; ok {
		var age int
		if err := json.Unmarshal(raw, &age); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid age"})
		}
		if age < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "Age must be a positive number"})
		}
		args = append(args, age)
		setClauses = append(setClauses, fmt.Sprintf("age = $%d", len(args)))
	}

	if len(setClauses) == 0 {
		// Tidak ada yang diubah, kembalikan profil apa adanya
		return c.JSON(user)
	}

	args = append(args, user.ID)
	query := fmt.Sprintf(
		"UPDATE users SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d RETURNING id, name, email, age, created_at, updated_at",
		strings.Join(setClauses, ", "), len(args))

	var updated models.User
	err := config.DB.QueryRow(query, args...).Scan(
		&updated.ID, &updated.Name, &updated.Email, &updated.Age,
		&updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.SecurityLogger.Warn("Duplicate email on update", zap.Int("user_id", user.ID))
			return c.Status(400).JSON(fiber.Map{
				"error": "Email already in use",
			})
		}
		logger.ErrorLogger.Error("Error updating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error updating user",
		})
	}

	logger.AuditLogger.Info("User updated successfully", zap.Int("user_id", user.ID))
	return c.JSON(updated)
}

// DeleteProfile menangani DELETE /users/me: task milik user dihapus dulu,
// baru baris user-nya. Berurutan, tanpa transaksi lintas tabel.
func DeleteProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	// Kumpulkan id task dulu supaya cache Redis-nya ikut dibersihkan
	rows, err := config.DB.Query("SELECT id FROM tasks WHERE owner_id = $1", user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks for delete", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error deleting user",
		})
	}
	taskIDs := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			logger.ErrorLogger.Error("Error scanning task ids", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"error": "Error deleting user",
			})
		}
		taskIDs = append(taskIDs, id)
	}
	rows.Close()

	if _, err := config.DB.Exec("DELETE FROM tasks WHERE owner_id = $1", user.ID); err != nil {
		logger.ErrorLogger.Error("Error deleting tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error deleting user",
		})
	}

	if _, err := config.DB.Exec("DELETE FROM users WHERE id = $1", user.ID); err != nil {
		logger.ErrorLogger.Error("Error deleting user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error deleting user",
		})
	}

	// Bersihkan cache task yang ikut terhapus
	for _, id := range taskIDs {
		config.RedisClient.Del(config.Ctx, fmt.Sprintf("task:%d", id))
	}

	// Email perpisahan best-effort
	if config.Mailer != nil {
		go func(email, name string) {
			if err := config.Mailer.SendCancelationEmail(email, name); err != nil {
				logger.ErrorLogger.Error("Error sending cancelation email", zap.Error(err))
			}
		}(user.Email, user.Name)
	}

	logger.AuditLogger.Info("User deleted successfully", zap.Int("user_id", user.ID))
	return c.JSON(user)
}
