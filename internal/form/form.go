// Package form holds the creation drafts for each collection: the editable
// fields, list-of-records editing, validation and the payload sent to the
// server. Drafts are values; every edit returns a new draft.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/h0rv/catalog/internal/domain"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid form")

// PlaceholderImage is sent when an optional image URL is left blank.
const PlaceholderImage = "https://via.placeholder.com/150?text=No+image"

// Choice lists offered by the forms.
var (
	HeroRoles      = []string{"Carry", "Support", "Nuker", "Disabler", "Initiator"}
	ItemCategories = []string{"Consumables", "Attributes", "Weapons", "Armor", "Artifacts", "Neutral"}
	PostCategories = []string{"Updates", "Guides", "Tournaments", "Discussions"}
	Districts      = []string{"Center", "Tairova", "Kotovskogo"}
)

// Field is one editable input of a draft.
type Field struct {
	Key       string
	Label     string
	Value     string
	Options   []string
	Optional  bool
	Multiline bool
}

// Draft is the state of one creation form.
type Draft interface {
	Kind() domain.FormKind
	Fields() []Field
	Set(key, value string) Draft
	// Add appends a blank entry to the draft's list, if it has one.
	Add() Draft
	// Remove drops entry i of the draft's list.
	Remove(i int) Draft
	Validate() error
	Payload() map[string]any
}

// New returns an empty draft for kind, or nil for FormNone.
func New(kind domain.FormKind) Draft {
	switch kind {
	case domain.FormHero:
		return NewHero()
	case domain.FormItem:
		return NewItem()
	case domain.FormPost:
		return NewPost()
	case domain.FormReview:
		return NewReview()
	}
	return nil
}

// Decode restores a draft of kind from its JSON encoding.
func Decode(kind domain.FormKind, raw []byte) (Draft, error) {
	var (
		d   Draft
		err error
	)
	switch kind {
	case domain.FormHero:
		var h Hero
		err = json.Unmarshal(raw, &h)
		d = h
	case domain.FormItem:
		var it Item
		err = json.Unmarshal(raw, &it)
		d = it
	case domain.FormPost:
		var p Post
		err = json.Unmarshal(raw, &p)
		d = p
	case domain.FormReview:
		var r Review
		err = json.Unmarshal(raw, &r)
		d = r
	default:
		return nil, fmt.Errorf("decode draft: unknown form %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s draft: %w", kind, err)
	}
	return d, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// listKey splits "abilities.2.name" into ("abilities", 2, "name").
func listKey(key string) (list string, index int, field string, ok bool) {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) < 2 {
		return "", 0, "", false
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, "", false
	}
	if len(parts) == 3 {
		field = parts[2]
	}
	return parts[0], i, field, true
}

// EntryIndex returns the list entry a field key addresses, e.g. 2 for
// "abilities.2.name". Scalar fields report false.
func EntryIndex(key string) (int, bool) {
	_, i, _, ok := listKey(key)
	return i, ok
}

// removeAt returns a copy of items without index i.
func removeAt[T any](items []T, i int) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// replaceAt returns a copy of items with index i set to v.
func replaceAt[T any](items []T, i int, v T) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	out := append([]T(nil), items...)
	out[i] = v
	return out
}
