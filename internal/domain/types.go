// Package domain defines the normalized catalog types shared by the API client,
// the view-state store and the TUI. Entities are kept as attribute maps so that
// every collection (heroes, items, posts, reviews) flows through the same code.
package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// AllValue is the filter sentinel meaning "no filtering".
const AllValue = "All"

// IDKey is the attribute every entity must carry.
const IDKey = "id"

// Entity is one record of a collection: a mapping of attribute names to
// primitive or nested JSON values.
type Entity map[string]any

// ID returns the entity id normalized to a string. Servers send ids either as
// JSON strings or numbers.
func (e Entity) ID() string {
	return e.Attr(IDKey)
}

// Has reports whether the attribute is present and non-null.
func (e Entity) Has(key string) bool {
	v, ok := e[key]
	return ok && v != nil
}

// Attr returns the attribute rendered as a string, or "" when missing.
// Numbers are formatted without a trailing ".0" so that 3 and "3" compare equal.
func (e Entity) Attr(key string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

// List returns a list attribute as strings (e.g. item attributes).
func (e Entity) List(key string) []string {
	raw, ok := e[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, FormatValue(v))
	}
	return out
}

// Records returns a list-of-objects attribute (e.g. hero abilities).
func (e Entity) Records(key string) []Entity {
	raw, ok := e[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Entity, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Entity(m))
		}
	}
	return out
}

// Keys returns the attribute names in a stable order, id first.
func (e Entity) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		if k != IDKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := e[IDKey]; ok {
		keys = append([]string{IDKey}, keys...)
	}
	return keys
}

// FormatValue renders a decoded JSON value for display and comparison.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// IDs returns the ids of the given entities in order. The id sequence is the
// identity of a visible slice.
func IDs(entities []Entity) []string {
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.ID()
	}
	return ids
}

// FetchState is what a list view consumes from a collection fetcher.
type FetchState struct {
	Data    []Entity // Last successfully loaded collection (empty if none yet)
	Loading bool     // A load is in flight
	Err     error    // Last load failure, nil while loading or when ready
}

// LoadStatus is the consumer-visible state of a fetch.
type LoadStatus int

const (
	StatusLoading LoadStatus = iota
	StatusError
	StatusReady
)

// Status returns exactly one of loading, error or ready.
func (s FetchState) Status() LoadStatus {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Err != nil:
		return StatusError
	default:
		return StatusReady
	}
}

// FormKind selects the creation form used by a collection.
type FormKind string

const (
	FormHero   FormKind = "hero"
	FormItem   FormKind = "item"
	FormPost   FormKind = "post"
	FormReview FormKind = "review"
	FormNone   FormKind = ""
)

// Collection describes one remote collection the catalog can browse.
type Collection struct {
	Name         string   // Stable key (e.g. "heroes")
	Title        string   // Display title
	Path         string   // Resource path relative to the base URL
	FilterKey    string   // Attribute used for equality filtering
	FilterValues []string // Known filter values offered before data arrives
	PageSize     int      // Items per page
	Form         FormKind // Creation form, FormNone disables creation
}
