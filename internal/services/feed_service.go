package services

import (
	"database/sql"

	"picstream/internal/models"
)

// FeedServiceProvider defines the interface for the feed composer.
type FeedServiceProvider interface {
	Feed(userID string, offset, limit int) ([]models.Pic, error)
}

// FeedService composes a user's feed at read time from the current follow
// edges. There is no precomputed feed: a new follow or post shows up on the
// next request with no backfill step.
type FeedService struct {
	db *sql.DB
}

// NewFeedService creates a new FeedService.
func NewFeedService(db *sql.DB) *FeedService {
	return &FeedService{db: db}
}

// Feed returns posts authored by userID or by anyone userID follows, newest
// first, as a contiguous offset/limit window of that ordering.
func (s *FeedService) Feed(userID string, offset, limit int) ([]models.Pic, error) {
	return queryPics(s.db,
		`SELECT `+picColumns+` FROM pics p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ? OR p.user_id IN (SELECT follows_id FROM followers WHERE user_id = ?)
		 ORDER BY p.created DESC, p.id DESC LIMIT ? OFFSET ?`,
		userID, userID, limit, offset)
}
