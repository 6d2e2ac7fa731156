package store

import (
	"testing"

	"github.com/h0rv/catalog/internal/domain"
	"github.com/stretchr/testify/assert"
)

func createTestHeroes() []domain.Entity {
	return []domain.Entity{
		{"id": float64(1), "name": "Juggernaut", "role": "Carry"},
		{"id": float64(2), "name": "Crystal Maiden", "role": "Support"},
		{"id": float64(3), "name": "Anti-Mage", "role": "Carry"},
	}
}

func TestApply_SelectsExactMatches(t *testing.T) {
	result := Apply(createTestHeroes(), "role", "Carry")

	assert.Equal(t, []string{"1", "3"}, domain.IDs(result))
	for _, e := range result {
		assert.Equal(t, "Carry", e.Attr("role"))
	}
}

func TestApply_AllIsIdentity(t *testing.T) {
	heroes := createTestHeroes()
	assert.Equal(t, heroes, Apply(heroes, "role", domain.AllValue))
}

func TestApply_Completeness(t *testing.T) {
	items := []domain.Entity{
		{"id": "a", "category": "Armor"},
		{"id": "b", "category": "Weapons"},
		{"id": "c", "category": "Armor"},
		{"id": "d"},
		{"id": "e", "category": nil},
		{"id": "f", "category": "Armor"},
	}

	for _, value := range []string{"Armor", "Weapons", "Artifacts"} {
		result := Apply(items, "category", value)

		var want []string
		for _, e := range items {
			if e.Has("category") && e.Attr("category") == value {
				want = append(want, e.ID())
			}
		}
		if want == nil {
			want = []string{}
		}
		assert.Equal(t, want, domain.IDs(result), "value %q", value)
	}
}

func TestApply_NoPartialMatch(t *testing.T) {
	items := []domain.Entity{
		{"id": "1", "role": "Carry"},
		{"id": "2", "role": "Carry Support"},
		{"id": "3", "role": "carry"},
	}
	assert.Equal(t, []string{"1"}, domain.IDs(Apply(items, "role", "Carry")))
}

func TestApply_MissingAttribute(t *testing.T) {
	items := []domain.Entity{{"id": "1"}, {"id": "2", "role": ""}}
	assert.Empty(t, Apply(items, "role", "Carry"))
	assert.Len(t, Apply(items, "role", domain.AllValue), 2)
}

func TestApply_NumericValues(t *testing.T) {
	reviews := []domain.Entity{
		{"id": "1", "averageRating": float64(5)},
		{"id": "2", "averageRating": float64(4)},
		{"id": "3", "averageRating": "5"},
	}
	assert.Equal(t, []string{"1", "3"}, domain.IDs(Apply(reviews, "averageRating", "5")))
}

func TestFilter_Set(t *testing.T) {
	f := NewFilter("role")
	assert.Equal(t, domain.AllValue, f.Value)
	assert.False(t, f.Active())

	assert.True(t, f.Set("Carry"))
	assert.False(t, f.Set("Carry"))
	assert.True(t, f.Active())

	assert.True(t, f.Set(""))
	assert.Equal(t, domain.AllValue, f.Value)
}

func TestOptions(t *testing.T) {
	heroes := createTestHeroes()
	heroes = append(heroes, domain.Entity{"id": float64(4), "role": "Nuker"}, domain.Entity{"id": float64(5)})

	options := Options(heroes, "role", []string{"Support", "Initiator"})
	assert.Equal(t, []string{domain.AllValue, "Support", "Initiator", "Carry", "Nuker"}, options)
}
