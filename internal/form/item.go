package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/h0rv/catalog/internal/domain"
)

// Item is the draft of a new shop item. Price is kept as typed so that a
// half-entered number survives a save/restore of the draft.
type Item struct {
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Attributes  []string `json:"attributes"`
}

// NewItem returns a blank item in the first category with one attribute slot.
func NewItem() Item {
	return Item{Price: "0", Category: ItemCategories[0], Attributes: []string{""}}
}

func (it Item) Kind() domain.FormKind { return domain.FormItem }

func (it Item) Fields() []Field {
	fields := []Field{
		{Key: "name", Label: "Name", Value: it.Name},
		{Key: "icon", Label: "Icon URL", Value: it.Icon, Optional: true},
		{Key: "price", Label: "Price (gold)", Value: it.Price},
		{Key: "category", Label: "Category", Value: it.Category, Options: ItemCategories},
		{Key: "description", Label: "Description", Value: it.Description, Multiline: true},
	}
	for i, a := range it.Attributes {
		fields = append(fields, Field{
			Key:      fmt.Sprintf("attributes.%d", i),
			Label:    fmt.Sprintf("Attribute %d", i+1),
			Value:    a,
			Optional: true,
		})
	}
	return fields
}

func (it Item) Set(key, value string) Draft {
	switch key {
	case "name":
		it.Name = value
	case "icon":
		it.Icon = value
	case "price":
		it.Price = value
	case "category":
		it.Category = value
	case "description":
		it.Description = value
	default:
		list, i, _, ok := listKey(key)
		if ok && list == "attributes" {
			return it.UpdateAttribute(i, value)
		}
	}
	return it
}

func (it Item) Add() Draft         { return it.AddAttribute() }
func (it Item) Remove(i int) Draft { return it.RemoveAttribute(i) }

// AddAttribute appends an empty attribute.
func (it Item) AddAttribute() Item {
	it.Attributes = append(append([]string(nil), it.Attributes...), "")
	return it
}

// RemoveAttribute drops attribute i. The last remaining slot stays.
func (it Item) RemoveAttribute(i int) Item {
	if len(it.Attributes) <= 1 {
		return it
	}
	it.Attributes = removeAt(it.Attributes, i)
	return it
}

// UpdateAttribute sets attribute i.
func (it Item) UpdateAttribute(i int, value string) Item {
	it.Attributes = replaceAt(it.Attributes, i, value)
	return it
}

func (it Item) price() (float64, error) {
	p := strings.TrimSpace(it.Price)
	if p == "" {
		return 0, nil
	}
	return strconv.ParseFloat(p, 64)
}

// Validate requires a name, a description, a category and a non-negative price.
func (it Item) Validate() error {
	if blank(it.Name) || blank(it.Description) {
		return invalid("name and description are required")
	}
	if blank(it.Category) {
		return invalid("category is required")
	}
	price, err := it.price()
	if err != nil {
		return invalid("price %q is not a number", it.Price)
	}
	if price < 0 {
		return invalid("price must not be negative")
	}
	return nil
}

// Payload drops blank attributes and fills the icon placeholder. The
// attributes key is omitted when none remain.
func (it Item) Payload() map[string]any {
	price, _ := it.price()
	icon := strings.TrimSpace(it.Icon)
	if icon == "" {
		icon = PlaceholderImage
	}
	payload := map[string]any{
		"name":        strings.TrimSpace(it.Name),
		"icon":        icon,
		"price":       price,
		"category":    it.Category,
		"description": it.Description,
	}

	var attrs []string
	for _, a := range it.Attributes {
		if !blank(a) {
			attrs = append(attrs, strings.TrimSpace(a))
		}
	}
	if len(attrs) > 0 {
		payload["attributes"] = attrs
	}
	return payload
}
