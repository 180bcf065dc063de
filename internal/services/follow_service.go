package services

import (
	"database/sql"
	"fmt"

	"picstream/internal/models"
)

// FollowServiceProvider defines the interface for the follow graph.
type FollowServiceProvider interface {
	Follow(followerID, targetID string) error
	Unfollow(followerID, targetID string) error
	Following(userID string) ([]models.User, error)
	Followers(userID string) ([]models.User, error)
}

// FollowService manages directed follow edges between accounts.
type FollowService struct {
	db *sql.DB
}

// NewFollowService creates a new FollowService.
func NewFollowService(db *sql.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow creates the edge follower -> target. Following someone twice is a
// no-op: the conditional insert leaves the existing edge untouched, so two
// racing requests still end with exactly one row.
func (s *FollowService) Follow(followerID, targetID string) error {
	if followerID == targetID {
		return fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}
	if err := s.ensureUsers(followerID, targetID); err != nil {
		return err
	}

	_, err := s.db.Exec(
		"INSERT INTO followers(user_id, follows_id) VALUES(?, ?) ON CONFLICT(user_id, follows_id) DO NOTHING",
		followerID, targetID)
	return err
}

// Unfollow removes the edge follower -> target if present. A missing edge,
// or an account that never existed, is not an error: deleting nothing is
// already the requested state.
func (s *FollowService) Unfollow(followerID, targetID string) error {
	_, err := s.db.Exec("DELETE FROM followers WHERE user_id = ? AND follows_id = ?", followerID, targetID)
	return err
}

func (s *FollowService) ensureUsers(ids ...string) error {
	for _, id := range ids {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// Following lists the accounts userID follows.
func (s *FollowService) Following(userID string) ([]models.User, error) {
	return s.queryUsers(
		`SELECT u.id, u.username, u.name FROM users u
		 JOIN followers f ON u.id = f.follows_id
		 WHERE f.user_id = ?
		 ORDER BY u.username`, userID)
}

// Followers lists the accounts following userID.
func (s *FollowService) Followers(userID string) ([]models.User, error) {
	return s.queryUsers(
		`SELECT u.id, u.username, u.name FROM users u
		 JOIN followers f ON u.id = f.user_id
		 WHERE f.follows_id = ?
		 ORDER BY u.username`, userID)
}

func (s *FollowService) queryUsers(query, userID string) ([]models.User, error) {
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Name); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
