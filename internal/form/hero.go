package form

import (
	"fmt"
	"strings"

	"github.com/h0rv/catalog/internal/domain"
)

const heroAbilitySlots = 4

// Ability is one hero ability entry.
type Ability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a Ability) complete() bool {
	return !blank(a.Name) && !blank(a.Description)
}

// Hero is the draft of a new hero.
type Hero struct {
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Portrait  string    `json:"portrait"`
	Abilities []Ability `json:"abilities"`
}

// NewHero returns a blank hero with four empty ability slots.
func NewHero() Hero {
	return Hero{Abilities: make([]Ability, heroAbilitySlots)}
}

func (h Hero) Kind() domain.FormKind { return domain.FormHero }

func (h Hero) Fields() []Field {
	fields := []Field{
		{Key: "name", Label: "Name", Value: h.Name},
		{Key: "role", Label: "Role", Value: h.Role, Options: HeroRoles},
		{Key: "portrait", Label: "Portrait URL", Value: h.Portrait, Optional: true},
	}
	for i, a := range h.Abilities {
		fields = append(fields,
			Field{Key: fmt.Sprintf("abilities.%d.name", i), Label: fmt.Sprintf("Ability %d", i+1), Value: a.Name},
			Field{Key: fmt.Sprintf("abilities.%d.description", i), Label: "Description", Value: a.Description, Multiline: true},
		)
	}
	return fields
}

func (h Hero) Set(key, value string) Draft {
	switch key {
	case "name":
		h.Name = value
	case "role":
		h.Role = value
	case "portrait":
		h.Portrait = value
	default:
		list, i, field, ok := listKey(key)
		if ok && list == "abilities" {
			return h.UpdateAbility(i, field, value)
		}
	}
	return h
}

func (h Hero) Add() Draft         { return h.AddAbility() }
func (h Hero) Remove(i int) Draft { return h.RemoveAbility(i) }

// AddAbility appends an empty ability.
func (h Hero) AddAbility() Hero {
	h.Abilities = append(append([]Ability(nil), h.Abilities...), Ability{})
	return h
}

// RemoveAbility drops ability i.
func (h Hero) RemoveAbility(i int) Hero {
	h.Abilities = removeAt(h.Abilities, i)
	return h
}

// UpdateAbility sets field ("name" or "description") of ability i.
func (h Hero) UpdateAbility(i int, field, value string) Hero {
	if i < 0 || i >= len(h.Abilities) {
		return h
	}
	a := h.Abilities[i]
	switch field {
	case "name":
		a.Name = value
	case "description":
		a.Description = value
	default:
		return h
	}
	h.Abilities = replaceAt(h.Abilities, i, a)
	return h
}

// Validate requires a name, a role and at least one complete ability.
func (h Hero) Validate() error {
	if blank(h.Name) || blank(h.Role) {
		return invalid("name and role are required")
	}
	for _, a := range h.Abilities {
		if a.complete() {
			return nil
		}
	}
	return invalid("at least one ability needs a name and a description")
}

// Payload drops incomplete abilities and fills the portrait placeholder.
func (h Hero) Payload() map[string]any {
	abilities := make([]map[string]any, 0, len(h.Abilities))
	for _, a := range h.Abilities {
		if a.complete() {
			abilities = append(abilities, map[string]any{"name": a.Name, "description": a.Description})
		}
	}
	portrait := strings.TrimSpace(h.Portrait)
	if portrait == "" {
		portrait = PlaceholderImage
	}
	return map[string]any{
		"name":      strings.TrimSpace(h.Name),
		"role":      h.Role,
		"portrait":  portrait,
		"abilities": abilities,
	}
}
