package store

import (
	"github.com/h0rv/catalog/internal/domain"
)

// Apply returns the entities whose key attribute equals value, preserving
// order. The AllValue sentinel returns items unchanged. Entities missing the
// attribute never match a concrete value.
func Apply(items []domain.Entity, key, value string) []domain.Entity {
	if value == domain.AllValue {
		return items
	}

	filtered := make([]domain.Entity, 0, len(items))
	for _, item := range items {
		if !item.Has(key) {
			continue
		}
		if item.Attr(key) == value {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Filter is the single-attribute equality filter owned by a view.
type Filter struct {
	Key   string
	Value string
}

// NewFilter creates a filter on key with no filtering applied.
func NewFilter(key string) Filter {
	return Filter{Key: key, Value: domain.AllValue}
}

// Set changes the active value and reports whether it changed.
// An empty value means AllValue.
func (f *Filter) Set(value string) bool {
	if value == "" {
		value = domain.AllValue
	}
	if value == f.Value {
		return false
	}
	f.Value = value
	return true
}

// Active reports whether the filter narrows the collection.
func (f Filter) Active() bool {
	return f.Value != domain.AllValue
}

// Apply filters items with the current key and value.
func (f Filter) Apply(items []domain.Entity) []domain.Entity {
	return Apply(items, f.Key, f.Value)
}

// Options lists the selectable values: AllValue, then the known values, then
// any other value present in items, in first-seen order without duplicates.
func Options(items []domain.Entity, key string, known []string) []string {
	seen := map[string]bool{domain.AllValue: true}
	options := []string{domain.AllValue}

	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		options = append(options, v)
	}

	for _, v := range known {
		add(v)
	}
	for _, item := range items {
		add(item.Attr(key))
	}
	return options
}
