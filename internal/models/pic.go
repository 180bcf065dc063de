package models

import "time"

// Pic is a post: a caption plus an optional stored image. Pics are immutable
// once created; feeds and search order them by created time, newest first.
type Pic struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userID"`
	Pic     string    `json:"pic"`   // caption text, may carry #hashtags
	Image   string    `json:"image"` // blob locator, empty for caption-only posts
	Created time.Time `json:"created"`

	// Author fields joined in for feed and search responses.
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

// TagCount is a hashtag and how often it appeared in recent captions.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
