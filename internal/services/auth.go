package services

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/middleware"
)

// AuthService gates the admin panel behind a single password whose bcrypt
// hash lives in the local cache.
type AuthService struct {
	cache *cache.Store
	jwt   *middleware.JWTAuth
}

// NewAuthService seeds the stored hash from seedPassword on first boot;
// a hash already in the cache always wins.
func NewAuthService(cacheStore *cache.Store, jwt *middleware.JWTAuth, seedPassword string) *AuthService {
	s := &AuthService{cache: cacheStore, jwt: jwt}

	if cacheStore.PasswordHash() == "" && seedPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 12)
		if err != nil {
			log.Printf("failed to seed admin password hash: %v", err)
			return s
		}
		cacheStore.SetPasswordHash(string(hash))
	}
	return s
}

func (s *AuthService) Login(password string) (string, error) {
	hash := s.cache.PasswordHash()
	if hash == "" {
		return "", &UnauthorizedError{Message: "Admin password is not configured"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", &UnauthorizedError{Message: "Invalid password"}
	}

	token, err := s.jwt.GenerateAdminToken()
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (s *AuthService) ChangePassword(current, newPassword string) error {
	hash := s.cache.PasswordHash()
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return &UnauthorizedError{Message: "Current password is incorrect"}
	}

	if len(newPassword) < 6 {
		return &ValidationError{Fields: map[string]string{"new_password": "Password must be at least 6 characters"}}
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.cache.SetPasswordHash(string(newHash))
	return nil
}
