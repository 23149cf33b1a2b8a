package models

import (
	"time"
)

// User merepresentasikan satu baris di tabel users.
// Password, tokens, dan avatar tidak pernah ikut di-serialize ke response.
type User struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	Age        int       `json:"age"`
	Avatar     []byte    `json:"-"`
	AvatarType string    `json:"-"`
	Tokens     []string  `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Task struct {
	ID          int       `json:"id"`
	OwnerID     int       `json:"owner_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
