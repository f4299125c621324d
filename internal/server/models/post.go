package models

import "time"

type Post struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Comments    []Comment `json:"comments"`
}

// Comment is stored in post_comments but no operation reads or writes it
// yet; posts always serialize an empty list.
type Comment struct {
	CommenterID string    `json:"commenterId"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PostPatch holds the fields of an edit; nil means unchanged.
type PostPatch struct {
	Title       *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Description == nil
}
