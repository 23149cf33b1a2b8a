package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"task-manager-api/internal/config"
	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Task handlers

// notFoundTask: respons 404 seragam. Task milik user lain dan task yang
// memang tidak ada harus tidak bisa dibedakan dari luar.
func notFoundTask(c *fiber.Ctx) error {
	return c.Status(404).JSON(fiber.Map{
		"error": "Task not found",
	})
}

// publishTaskEvent menyiarkan perubahan task ke hub WebSocket (jika aktif)
func publishTaskEvent(event string, task models.Task) {
	if config.TaskEvents != nil {
		config.TaskEvents.Publish(event, task)
	}
}

// cacheTask menyimpan task di Redis selama 1 jam
func cacheTask(task models.Task) {
	cacheKey := fmt.Sprintf("task:%d", task.ID)
	jsonData, err := json.Marshal(task)
	if err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, jsonData, time.Hour)
	}
}

// CreateTask menangani POST /tasks. Owner selalu user yang login,
// apa pun yang dikirim client.
func CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type TaskRequest struct {
		Description string `json:"description" validate:"required"`
		Completed   bool   `json:"completed"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error": "Bad request",
		})
	}

	req.Description = strings.TrimSpace(req.Description)
	if err := config.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error":  "Validation error",
			"errors": err.Error(),
		})
	}

	var task models.Task
	err := config.DB.QueryRow(
		"INSERT INTO tasks (owner_id, description, completed) VALUES ($1, $2, $3) RETURNING id, owner_id, description, completed, created_at, updated_at",
		userID, req.Description, req.Completed,
	).Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error creating task",
		})
	}

	cacheTask(task)
	publishTaskEvent("task_created", task)

	logger.AuditLogger.Info("Task created successfully", zap.Int("task_id", task.ID))
	return c.Status(201).JSON(task)
}

// ListTasks menangani GET /tasks?completed&sortBy&limit&skip.
// Selalu di-scope ke owner, lihat parseTaskQuery untuk semantik param.
func ListTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	q := parseTaskQuery(
		c.Query("completed"),
		c.Query("sortBy"),
		c.Query("limit"),
		c.Query("skip"),
	)

	query, args := q.apply(
		"SELECT id, owner_id, description, completed, created_at, updated_at FROM tasks WHERE owner_id = $1",
		[]interface{}{userID},
	)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error fetching tasks",
		})
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning tasks", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"error": "Error scanning tasks",
			})
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Error fetching tasks",
		})
	}

	logger.AuditLogger.Info("Tasks fetched successfully", zap.Int("count", len(tasks)))
	return c.JSON(tasks)
}

// GetTask menangani GET /tasks/:id
func GetTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return notFoundTask(c)
	}

	// Coba ambil dari cache Redis dulu
	cacheKey := fmt.Sprintf("task:%d", taskID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		var task models.Task
		if err = json.Unmarshal([]byte(cached), &task); err == nil {
			// Scoping owner tetap berlaku untuk cache hit
			if task.OwnerID != userID {
				return notFoundTask(c)
			}
			logger.AuditLogger.Info("Task found (from cache)", zap.Int("task_id", taskID))
			return c.JSON(task)
		}
	}

	// Query sekaligus di-scope ke owner: task milik user lain berakhir
	// sama dengan task yang tidak ada
	var task models.Task
	err = config.DB.QueryRow(
		"SELECT id, owner_id, description, completed, created_at, updated_at FROM tasks WHERE id = $1 AND owner_id = $2",
		taskID, userID).Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		logger.AuditLogger.Warn("Task not found", zap.Int("task_id", taskID), zap.Int("user_id", userID))
		return notFoundTask(c)
	}

	cacheTask(task)

	logger.AuditLogger.Info("Task found", zap.Int("task_id", taskID))
	return c.JSON(task)
}

// allowedTaskUpdates adalah daftar field task yang boleh di-PATCH
var allowedTaskUpdates = map[string]bool{
	"description": true,
	"completed":   true,
}

// UpdateTask menangani PATCH /tasks/:id
func UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return notFoundTask(c)
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"error": "Bad request",
		})
	}

	// Key di luar daftar ditolak duluan, sebelum cek keberadaan task
	var invalid []string
	for key := range patch {
		if !allowedTaskUpdates[key] {
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

	setClauses := []string{}
	args := []interface{}{}

	if raw, ok := patch["description"]; ok {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid description"})
		}
		description = strings.TrimSpace(description)
		if description == "" {
			return c.Status(400).JSON(fiber.Map{"error": "Description is required"})
		}
		args = append(args, description)
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", len(args)))
	}

	if raw, ok := patch["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid completed value"})
		}
		args = append(args, completed)
		setClauses = append(setClauses, fmt.Sprintf("completed = $%d", len(args)))
	}

	if len(setClauses) == 0 {
		// Tidak ada field yang diubah, cukup kembalikan task-nya
		return GetTask(c)
	}

	args = append(args, taskID, userID)
	query := fmt.Sprintf(
		"UPDATE tasks SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d AND owner_id = $%d RETURNING id, owner_id, description, completed, created_at, updated_at",
		strings.Join(setClauses, ", "), len(args)-1, len(args))

	var task models.Task
	err = config.DB.QueryRow(query, args...).Scan(
		&task.ID, &task.OwnerID, &task.Description, &task.Completed,
		&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		logger.AuditLogger.Warn("Task not found for update", zap.Int("task_id", taskID), zap.Int("user_id", userID))
		return notFoundTask(c)
	}

	cacheTask(task)
	publishTaskEvent("task_updated", task)

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID))
	return c.JSON(task)
}

// DeleteTask menangani DELETE /tasks/:id, mengembalikan task yang dihapus
func DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return notFoundTask(c)
	}

	var task models.Task
	err = config.DB.QueryRow(
		"DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING id, owner_id, description, completed, created_at, updated_at",
		taskID, userID).Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		logger.AuditLogger.Warn("Task not found for delete", zap.Int("task_id", taskID), zap.Int("user_id", userID))
		return notFoundTask(c)
	}

	// Hapus cache Redis untuk task ini
	cacheKey := fmt.Sprintf("task:%d", taskID)
	config.RedisClient.Del(config.Ctx, cacheKey)

	publishTaskEvent("task_deleted", task)

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID))
	return c.JSON(task)
}
