// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/store"
)

// CollectionSelectedMsg is emitted when the user picks a collection.
type CollectionSelectedMsg struct {
	Collection domain.Collection
}

// FilterSelectedMsg is emitted when the user picks a filter value.
type FilterSelectedMsg struct {
	Value string
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// Messages addressed to one mounted catalog view. The view field carries the
// instance id so that results for a replaced view are dropped.
type (
	fetchResultMsg struct {
		view   string
		result store.Result
	}

	revealMsg struct {
		view   string
		reveal store.Reveal
	}

	createResultMsg struct {
		view    string
		created domain.Entity
		err     error
	}

	deleteResultMsg struct {
		view string
		id   string
		err  error
	}
)

// Screen transition messages.
type (
	openDetailMsg struct {
		collection domain.Collection
		entity     domain.Entity
	}
	closeDetailMsg       struct{}
	closePickerMsg       struct{}
	closeFilterPickerMsg struct{}
	submitFormMsg        struct{ payload map[string]any }
	formClosedMsg        struct{}
)
