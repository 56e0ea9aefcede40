package model

import "time"

type Post struct {
	PostID    int       `json:"post_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Collab    bool      `json:"collab"`
	OwnerID   int       `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedPost is a post joined with the owner's display metadata for the
// global feed.
type FeedPost struct {
	Post
	Username string  `json:"username"`
	Fullname *string `json:"fullname"`
	ImageURL *string `json:"image_url"`
}
