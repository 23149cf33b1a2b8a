package handlers

import (
	"strings"

	"task-manager-api/internal/config"
	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Auth handlers

// validPassword menolak password yang mengandung kata "password"
// (case-insensitive). Panjang minimum sudah dicek lewat tag validator.
func validPassword(password string) bool {
	return !strings.Contains(strings.ToLower(password), "password")
}

// issueToken membuat token baru untuk user dan menambahkannya ke daftar
// token aktif di database.
func issueToken(userID int) (string, error) {
	tokenString, err := config.Tokens.Sign(userID)
	if err != nil {
		return "", err
	}
	_, err = config.DB.Exec(
		"UPDATE users SET tokens = array_append(tokens, $1), updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		tokenString, userID)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Register menangani POST /users
func Register(c *fiber.Ctx) error {
	// struct RegisterRequest menerima inputan dari user
	type RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=7"`
		Age      int    `json:"age" validate:"gte=0"`
	}

	// variabel req digunakan untuk menerima inputan dari user
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error": "Bad request",
		})
	}

	// Normalisasi sebelum validasi: name di-trim, email di-trim dan lowercase
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Validasi dengan validator
	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error":  "Validation error",
			"errors": err.Error(),
		})
	}

	if !validPassword(req.Password) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Password cannot contain \"password\"",
		})
	}

	// Hash the password using bcrypt with default cost
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error creating user",
		})
	}

	// Insert data user ke dalam database.
	// Jika email sudah ada (unique violation), kembalikan 400.
	var user models.User
	err = config.DB.QueryRow(
		"INSERT INTO users (name, email, password, age) VALUES ($1, $2, $3, $4) RETURNING id, name, email, age, created_at, updated_at",
		req.Name, req.Email, string(hashedPassword), req.Age,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Age, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				logger.SecurityLogger.Warn("Duplicate email", zap.String("email", req.Email))
				return c.Status(400).JSON(fiber.Map{
					"error": "Email already in use",
				})
			}
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error creating user",
		})
	}

	tokenString, err := issueToken(user.ID)
	if err != nil {
		// Hapus lagi user yang baru dibuat supaya email-nya bisa dipakai ulang
		if _, delErr := config.DB.Exec("DELETE FROM users WHERE id = $1", user.ID); delErr != nil {
			logger.ErrorLogger.Error("Error cleaning up user after token failure", zap.Error(delErr))
		}
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error generating token",
		})
	}

	// Email selamat datang best-effort, tidak boleh menggagalkan registrasi
	if config.Mailer != nil {
		go func(email, name string) {
			if err := config.Mailer.SendWelcomeEmail(email, name); err != nil {
				logger.ErrorLogger.Error("Error sending welcome email", zap.Error(err))
			}
		}(user.Email, user.Name)
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("user_id", user.ID))
	return c.Status(201).JSON(fiber.Map{
		"user":  user,
		"token": tokenString,
	})
}

// Login menangani POST /users/login
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error": "Bad request",
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error":  "Validation error",
			"errors": err.Error(),
		})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Respons gagal dibuat seragam: email tidak terdaftar dan password
	// salah menghasilkan error yang sama persis
	var user models.User
	err := config.DB.QueryRow(
		"SELECT id, name, email, password, age, created_at, updated_at FROM users WHERE email = $1",
		req.Email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Age,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.SecurityLogger.Warn("Login with unknown email", zap.String("email", req.Email))
		return c.Status(400).JSON(fiber.Map{
			"error": "Unable to login",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.Int("user_id", user.ID))
		return c.Status(400).JSON(fiber.Map{
			"error": "Unable to login",
		})
	}

	tokenString, err := issueToken(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error generating token",
		})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{
		"user":  user,
		"token": tokenString,
	})
}

// Logout menangani POST /users/logout: hanya token yang dipakai pada
// request ini yang dicabut, token aktif yang lain tetap berlaku.
func Logout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)
	tokenString := c.Locals("token").(string)

	_, err := config.DB.Exec(
		"UPDATE users SET tokens = array_remove(tokens, $1), updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		tokenString, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error revoking token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error logging out",
		})
	}

	logger.AuditLogger.Info("Logout success", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// LogoutAll menangani POST /users/logoutAll: seluruh daftar token dikosongkan.
func LogoutAll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	_, err := config.DB.Exec(
		"UPDATE users SET tokens = '{}', updated_at = CURRENT_TIMESTAMP WHERE id = $1",
		userID)
	if err != nil {
		logger.ErrorLogger.Error("Error revoking tokens", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error logging out",
		})
	}

	logger.AuditLogger.Info("Logout all success", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "Logged out from all sessions",
	})
}
