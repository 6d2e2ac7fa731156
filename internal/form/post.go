package form

import (
	"strings"
	"time"

	"github.com/h0rv/catalog/internal/domain"
)

// DefaultAuthor signs posts until accounts exist.
const DefaultAuthor = "User"

// Post is the draft of a new forum post.
type Post struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	ImageURL string `json:"imageUrl"`

	// Date overrides the submission date (YYYY-MM-DD); empty means today.
	Date string `json:"-"`
}

// NewPost returns a blank post in the discussions category.
func NewPost() Post {
	return Post{Category: "Discussions"}
}

func (p Post) Kind() domain.FormKind { return domain.FormPost }

func (p Post) Fields() []Field {
	return []Field{
		{Key: "title", Label: "Title", Value: p.Title},
		{Key: "content", Label: "Content", Value: p.Content, Multiline: true},
		{Key: "category", Label: "Category", Value: p.Category, Options: PostCategories},
		{Key: "imageUrl", Label: "Image URL", Value: p.ImageURL, Optional: true},
	}
}

func (p Post) Set(key, value string) Draft {
	switch key {
	case "title":
		p.Title = value
	case "content":
		p.Content = value
	case "category":
		p.Category = value
	case "imageUrl":
		p.ImageURL = value
	}
	return p
}

func (p Post) Add() Draft       { return p }
func (p Post) Remove(int) Draft { return p }

func (p Post) Validate() error {
	if blank(p.Title) || blank(p.Content) {
		return invalid("title and content are required")
	}
	return nil
}

// Payload stamps author and date; imageUrl is only sent when present.
func (p Post) Payload() map[string]any {
	date := p.Date
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	}
	payload := map[string]any{
		"title":    p.Title,
		"content":  p.Content,
		"author":   DefaultAuthor,
		"date":     date,
		"category": p.Category,
	}
	if !blank(p.ImageURL) {
		payload["imageUrl"] = strings.TrimSpace(p.ImageURL)
	}
	return payload
}
