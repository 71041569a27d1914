package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
)

type IAuthService interface {
	Login(username, password string) (string, error)
	Verify(username, password string) bool
}

type userRecord struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

type usersFile struct {
	Users []userRecord `json:"users"`
}

type authService struct {
	usersPath string
	jwtSecret string
	log       logger.ILogger
}

func NewAuthService(usersPath, jwtSecret string, log logger.ILogger) IAuthService {
	return &authService{
		usersPath: usersPath,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// Verify checks the flat user list. A missing or unreadable file means
// nobody can log in.
func (s *authService) Verify(username, password string) bool {
	data, err := os.ReadFile(s.usersPath)
	if err != nil {
		s.log.Warn("auth", "users file unavailable, rejecting login", map[string]interface{}{
			"path":  s.usersPath,
			"error": err.Error(),
		})
		return false
	}

	var parsed usersFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		s.log.Warn("auth", "users file unreadable", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	for _, u := range parsed.Users {
		if u.Username != username {
			continue
		}
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
	}
	return false
}

func (s *authService) Login(username, password string) (string, error) {
	if !s.Verify(username, password) {
		return "", fmt.Errorf("invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(12 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
