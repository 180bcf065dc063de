package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"picstream/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(email, username, name, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
}

// UserService provides business logic for account management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves the public record of a single user.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, name, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a new account, hashing the password before it touches the
// database. An email conflict is reported before a username conflict.
func (s *UserService) Register(email, username, name, password string) (models.User, error) {
	var taken int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&taken); err != nil {
		return models.User{}, err
	}
	if taken > 0 {
		return models.User{}, ErrEmailTaken
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&taken); err != nil {
		return models.User{}, err
	}
	if taken > 0 {
		return models.User{}, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
		Name:     name,
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, username, email, name, role, password_hash) VALUES(?, ?, ?, ?, 'user', ?)",
		user.ID, username, email, name, string(hashed))
	if err != nil {
		// A concurrent registration can slip past the checks above; the
		// UNIQUE constraints are the real arbiter.
		return models.User{}, constraintToConflict(err)
	}
	return user, nil
}

// constraintToConflict maps a UNIQUE violation on the users table back to
// the matching conflict error.
func constraintToConflict(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	}
	return err
}

// Authenticate verifies a login. An unknown email and a wrong password
// produce the same error so callers cannot probe which addresses are
// registered.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	var (
		user models.User
		hash string
	)
	row := s.db.QueryRow("SELECT id, username, name, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Username, &user.Name, &hash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
