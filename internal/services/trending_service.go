package services

import (
	"database/sql"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"picstream/internal/models"
)

// TrendingServiceProvider defines the interface for trending hashtag
// lookups.
type TrendingServiceProvider interface {
	Top() []models.TagCount
	Refresh() error
}

const (
	trendingWindow = 7 * 24 * time.Hour
	trendingSize   = 10
)

var captionTagRe = regexp.MustCompile(`(^|\s)#([A-Za-z0-9_]+)`)

// TrendingService keeps an in-memory tally of the hashtags used in recent
// captions. Refresh is driven by the background updater; reads only touch
// the cache.
type TrendingService struct {
	db *sql.DB

	mu  sync.RWMutex
	top []models.TagCount
}

// NewTrendingService creates a new TrendingService with an empty cache.
func NewTrendingService(db *sql.DB) *TrendingService {
	return &TrendingService{db: db}
}

// Refresh recounts hashtags over the trailing window and swaps the cache.
func (s *TrendingService) Refresh() error {
	rows, err := s.db.Query("SELECT pic FROM pics WHERE created >= ?", time.Now().UTC().Add(-trendingWindow))
	if err != nil {
		return err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var caption string
		if err := rows.Scan(&caption); err != nil {
			return err
		}
		for _, m := range captionTagRe.FindAllStringSubmatch(caption, -1) {
			counts[strings.ToLower(m[2])]++
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tags := make([]models.TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, models.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	if len(tags) > trendingSize {
		tags = tags[:trendingSize]
	}

	s.mu.Lock()
	s.top = tags
	s.mu.Unlock()
	return nil
}

// Top returns a copy of the cached tally.
func (s *TrendingService) Top() []models.TagCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TagCount, len(s.top))
	copy(out, s.top)
	return out
}
