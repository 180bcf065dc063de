package services

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"picstream/internal/models"
)

// PicServiceProvider defines the interface for post content and caption
// search.
type PicServiceProvider interface {
	Create(authorID, caption, imageLocator string) (models.Pic, error)
	ListByUser(userID string) ([]models.Pic, error)
	SearchKeywords(query string, offset, limit int) ([]models.Pic, error)
	SearchHashtag(tag string, offset, limit int) ([]models.Pic, error)
}

// Broadcaster pushes a newly created pic to live listeners.
type Broadcaster interface {
	BroadcastPic(pic models.Pic)
}

// PicService provides business logic for posts and caption search.
type PicService struct {
	db        *sql.DB
	broadcast Broadcaster
}

// NewPicService creates a new PicService. broadcast may be nil.
func NewPicService(db *sql.DB, broadcast Broadcaster) *PicService {
	return &PicService{db: db, broadcast: broadcast}
}

var hashtagRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const picColumns = `p.id, p.user_id, p.pic, p.image, p.created, u.username, u.name`

// Create persists a new post owned by authorID. A post needs visible
// content: an empty caption is allowed only when an image is attached.
func (s *PicService) Create(authorID, caption, imageLocator string) (models.Pic, error) {
	if strings.TrimSpace(caption) == "" && imageLocator == "" {
		return models.Pic{}, fmt.Errorf("%w: a post needs a caption or an image", ErrValidation)
	}

	var username, name string
	row := s.db.QueryRow("SELECT username, name FROM users WHERE id = ?", authorID)
	if err := row.Scan(&username, &name); err != nil {
		if err == sql.ErrNoRows {
			return models.Pic{}, ErrNotFound
		}
		return models.Pic{}, err
	}

	pic := models.Pic{
		ID:       uuid.New().String(),
		UserID:   authorID,
		Pic:      caption,
		Image:    imageLocator,
		Created:  time.Now().UTC(),
		Username: username,
		Name:     name,
	}

	_, err := s.db.Exec("INSERT INTO pics(id, user_id, pic, image, created) VALUES(?, ?, ?, ?, ?)",
		pic.ID, pic.UserID, pic.Pic, pic.Image, pic.Created)
	if err != nil {
		return models.Pic{}, err
	}

	if s.broadcast != nil {
		s.broadcast.BroadcastPic(pic)
	}
	return pic, nil
}

// ListByUser returns userID's posts, newest first.
func (s *PicService) ListByUser(userID string) ([]models.Pic, error) {
	return queryPics(s.db,
		`SELECT `+picColumns+` FROM pics p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ?
		 ORDER BY p.created DESC, p.id DESC`, userID)
}

// SearchKeywords matches every whitespace-separated keyword of query against
// captions. Keywords travel as bound LIKE parameters, never spliced into the
// SQL text.
func (s *PicService) SearchKeywords(query string, offset, limit int) ([]models.Pic, error) {
	keywords := strings.Fields(query)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: keywords required", ErrValidation)
	}

	conds := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords)+2)
	for _, kw := range keywords {
		conds = append(conds, `p.pic LIKE '%' || ? || '%' ESCAPE '\'`)
		args = append(args, escapeLike(kw))
	}
	args = append(args, limit, offset)

	return queryPics(s.db,
		`SELECT `+picColumns+` FROM pics p JOIN users u ON u.id = p.user_id
		 WHERE `+strings.Join(conds, " AND ")+`
		 ORDER BY p.created DESC, p.id DESC LIMIT ? OFFSET ?`, args...)
}

// SearchHashtag returns posts whose caption contains #tag at the start or
// after a space. The tag is restricted to word characters before it goes
// anywhere near a pattern.
func (s *PicService) SearchHashtag(tag string, offset, limit int) ([]models.Pic, error) {
	if !hashtagRe.MatchString(tag) {
		return nil, fmt.Errorf("%w: a hashtag may contain only letters, digits and underscores", ErrValidation)
	}

	// Underscores are legal in a tag but are also a LIKE wildcard.
	escaped := escapeLike(tag)
	return queryPics(s.db,
		`SELECT `+picColumns+` FROM pics p JOIN users u ON u.id = p.user_id
		 WHERE p.pic LIKE '#' || ? || '%' ESCAPE '\' OR p.pic LIKE '% #' || ? || '%' ESCAPE '\'
		 ORDER BY p.created DESC, p.id DESC LIMIT ? OFFSET ?`, escaped, escaped, limit, offset)
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func queryPics(db *sql.DB, query string, args ...interface{}) ([]models.Pic, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pics := []models.Pic{}
	for rows.Next() {
		var p models.Pic
		if err := rows.Scan(&p.ID, &p.UserID, &p.Pic, &p.Image, &p.Created, &p.Username, &p.Name); err != nil {
			return nil, err
		}
		pics = append(pics, p)
	}
	return pics, rows.Err()
}
