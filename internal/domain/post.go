package domain

import "time"

// Post represents a blog post held by the record store. The JSON tags
// double as the snapshot format on disk.
type Post struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Author     string     `json:"author"`
	Date       time.Time  `json:"date"`
	Comments   []Comment  `json:"comments"`
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
}

// Comment is a reader comment attached to a post.
type Comment struct {
	ID      string `json:"id"`
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}

// Category groups posts by topic.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form label on a post.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
