package domain

import (
	"fmt"
	"time"
)

type Author struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Post is a read-only projection of a backend post.
type Post struct {
	Id             string    `json:"_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Author         Author    `json:"author"`
	CreatedDate    time.Time `json:"createdDate"`
	IsVisitorOwner bool      `json:"isVisitorOwner,omitempty"`
}

// SavePost is the editable part of a post sent on create and edit.
type SavePost struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Token string `json:"token"`
}

// IsEmpty reports whether the backend answered with no post at all.
func (p *Post) IsEmpty() bool {
	return p == nil || (p.Id == "" && p.Title == "" && p.Body == "" && p.Author.Username == "")
}

func (p *Post) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tTitle: %s \n\tAuthor: %s \n\tCreatedDate: %s)", p.Id, p.Title, p.Author.Username, p.CreatedDate)
}
