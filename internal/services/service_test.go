package services

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"picstream/internal/database"
)

// newTestDB opens a fresh in-memory database with the real schema. A single
// connection keeps every statement on the same in-memory instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func insertUser(t *testing.T, db *sql.DB, id, username string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO users(id, username, email, name, role, password_hash) VALUES(?, ?, ?, ?, 'user', 'x')",
		id, username, username+"@example.com", username)
	if err != nil {
		t.Fatalf("insert user %s: %v", id, err)
	}
}

func insertPic(t *testing.T, db *sql.DB, id, userID, caption string, created time.Time) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO pics(id, user_id, pic, image, created) VALUES(?, ?, ?, '', ?)",
		id, userID, caption, created)
	if err != nil {
		t.Fatalf("insert pic %s: %v", id, err)
	}
}

func countRows(t *testing.T, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query: %v", err)
	}
	return n
}
