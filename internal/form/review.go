package form

import (
	"strconv"
	"strings"

	"github.com/h0rv/catalog/internal/domain"
)

// Review is the draft of a new place review.
type Review struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	AverageRating string `json:"averageRating"`
	Review        string `json:"review"`
	Photo         string `json:"photo"`
	District      string `json:"district"`
}

// NewReview returns a blank review.
func NewReview() Review {
	return Review{}
}

func (r Review) Kind() domain.FormKind { return domain.FormReview }

func (r Review) Fields() []Field {
	return []Field{
		{Key: "name", Label: "Name", Value: r.Name},
		{Key: "address", Label: "Address", Value: r.Address},
		{Key: "averageRating", Label: "Rating (1-5)", Value: r.AverageRating, Options: []string{"1", "2", "3", "4", "5"}},
		{Key: "review", Label: "Review", Value: r.Review, Multiline: true, Optional: true},
		{Key: "photo", Label: "Photo URL", Value: r.Photo, Optional: true},
		{Key: "district", Label: "District", Value: r.District, Options: Districts},
	}
}

func (r Review) Set(key, value string) Draft {
	switch key {
	case "name":
		r.Name = value
	case "address":
		r.Address = value
	case "averageRating":
		r.AverageRating = value
	case "review":
		r.Review = value
	case "photo":
		r.Photo = value
	case "district":
		r.District = value
	}
	return r
}

func (r Review) Add() Draft       { return r }
func (r Review) Remove(int) Draft { return r }

func (r Review) rating() (int, error) {
	return strconv.Atoi(strings.TrimSpace(r.AverageRating))
}

// Validate requires a name, an address, a district and a rating from 1 to 5.
func (r Review) Validate() error {
	if blank(r.Name) || blank(r.Address) {
		return invalid("name and address are required")
	}
	if blank(r.District) {
		return invalid("district is required")
	}
	rating, err := r.rating()
	if err != nil || rating < 1 || rating > 5 {
		return invalid("rating must be a whole number from 1 to 5")
	}
	return nil
}

func (r Review) Payload() map[string]any {
	rating, _ := r.rating()
	payload := map[string]any{
		"name":          strings.TrimSpace(r.Name),
		"address":       strings.TrimSpace(r.Address),
		"averageRating": rating,
		"review":        r.Review,
		"district":      r.District,
	}
	if !blank(r.Photo) {
		payload["photo"] = strings.TrimSpace(r.Photo)
	}
	return payload
}
