package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pics (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		pic TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		created DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pics_user_created ON pics(user_id, created DESC);

	-- user_id follows follows_id. The unique pair turns concurrent duplicate
	-- follow requests into a single edge.
	CREATE TABLE IF NOT EXISTS followers (
		user_id TEXT NOT NULL REFERENCES users(id),
		follows_id TEXT NOT NULL REFERENCES users(id),
		UNIQUE(user_id, follows_id)
	);

	CREATE INDEX IF NOT EXISTS idx_followers_follows ON followers(follows_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
