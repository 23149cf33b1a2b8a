package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Service menandatangani dan memverifikasi bearer token dengan HMAC.
// Secret diberikan saat konstruksi, bukan dibaca dari env di sini.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Sign membuat token JWT yang berisi user ID. Token sengaja tidak punya
// klaim exp: token hanya gugur saat dihapus dari daftar token milik user.
func (s *Service) Sign(userID int) (string, error) {
	// jti unik per sesi, supaya array_remove cuma menghapus satu token
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
	})
	return t.SignedString(s.secret)
}

// Parse memverifikasi signature dan mengembalikan user ID di dalam token.
func (s *Service) Parse(tokenString string) (int, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int(userID), nil
}
