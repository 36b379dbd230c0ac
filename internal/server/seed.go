package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/folio-dev/folio/internal/auth"
	"github.com/folio-dev/folio/internal/models"
)

// SeedFile describes the development seed file layout
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// SeedUser is a user account declared in the seed file
type SeedUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// applySeed creates the accounts declared in the seed file. Existing
// accounts (matched by email) are left untouched, so repeated startups
// are safe. Development mode only.
func (s *Server) applySeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, su := range seed.Users {
		if su.Email == "" || su.Password == "" {
			return fmt.Errorf("seed user requires email and password")
		}

		role := su.Role
		if role == "" {
			role = models.RoleUser
		}
		if role != models.RoleAdmin && role != models.RoleUser {
			return fmt.Errorf("seed user %s has unknown role %q", su.Email, role)
		}

		var count int64
		if err := s.db.Model(&models.User{}).Where("email = ?", su.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		passwordHash, err := auth.HashPassword(su.Password)
		if err != nil {
			return err
		}

		user := &models.User{
			Email:        su.Email,
			PasswordHash: passwordHash,
			Name:         su.Name,
			Role:         role,
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}

		s.logger.Info().Str("email", su.Email).Str("role", role).Msg("Seeded development user")
	}

	// Seeding users requires a JWT secret so logins work without /api/setup
	var conf models.Config
	if err := s.db.First(&conf).Error; err != nil {
		jwtSecret, err := generateJWTSecret()
		if err != nil {
			return err
		}
		if err := s.db.Create(&models.Config{JWTSecret: jwtSecret}).Error; err != nil {
			return err
		}
		auth.InitializeJWT(jwtSecret)
	}

	return nil
}

func generateJWTSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
