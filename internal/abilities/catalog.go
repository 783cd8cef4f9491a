// Package abilities holds the fixed catalog of titan special abilities.
// The catalog is built once and shared read-only by every game.
package abilities

import (
	"sort"

	"github.com/ericogr/titan-arena/internal/game"
)

const (
	// MaxCharge is the upper bound of the charge scale.
	MaxCharge = 100
	// FallbackCost is the cost reported for an id the catalog does not know,
	// making such an ability unaffordable.
	FallbackCost = MaxCharge
)

// Ability is a catalog entry.
type Ability struct {
	ID               string
	Name             string
	Description      string
	Cost             int
	IsDamage         bool
	ScalesWithAttack bool
	Effect           Effect
}

// Meta projects the ability for clients.
func (a Ability) Meta() game.AbilityMeta {
	return game.AbilityMeta{
		ID:               a.ID,
		Name:             a.Name,
		Description:      a.Description,
		Cost:             a.Cost,
		IsDamageAbility:  a.IsDamage,
		ScalesWithAttack: a.ScalesWithAttack,
	}
}

var catalog = newCatalog()

func newCatalog() map[string]Ability {
	list := []Ability{
		{
			ID: "drain", Name: "Drain", Cost: 35, IsDamage: true, ScalesWithAttack: true,
			Description: "Deal Attack * 0.75 damage and heal caster by same amount.",
			Effect:      drain{ratio: 0.75},
		},
		{
			ID: "focused_strike", Name: "Focused Strike", Cost: 25, IsDamage: true, ScalesWithAttack: true,
			Description: "Deal Attack * 1.5 damage.",
			Effect:      strike{name: "Focused Strike", multiplier: 1.5},
		},
		{
			ID: "fortify", Name: "Fortify", Cost: 20,
			Description: "Heal 10 and gain a 10 point shield for this round.",
			Effect:      fortify{heal: 10, shield: 10},
		},
		{
			ID: "heal_big", Name: "Vital Surge", Cost: 40,
			Description: "Heal self 50 HP.",
			Effect:      mend{name: "Vital Surge", amount: 50},
		},
		{
			ID: "heal_small", Name: "Cleansing Light", Cost: 20,
			Description: "Heal self 25 HP.",
			Effect:      mend{name: "Cleansing Light", amount: 25},
		},
		{
			ID: "overdrive", Name: "Overdrive", Cost: 50, IsDamage: true, ScalesWithAttack: true,
			Description: "Deal Attack * 2.5 damage.",
			Effect:      strike{name: "Overdrive", multiplier: 2.5},
		},
		{
			ID: "quick_charge", Name: "Quick Charge", Cost: 5,
			Description: "Add +40 charge to caster, scaled by Stamina (capped 100).",
			Effect:      quickCharge{base: 40},
		},
		{
			ID: "shield", Name: "Barrier", Cost: 30,
			Description: "Create a shield that absorbs 30 damage for this round.",
			Effect:      barrier{amount: 30},
		},
		{
			ID: "shock", Name: "Shock", Cost: 30, IsDamage: true,
			Description: "Deal 10 fixed damage and reduce opponent Speed by 25%.",
			Effect:      shock{damage: 10, slow: 0.75},
		},
		{
			ID: "weaken", Name: "Weaken", Cost: 25,
			Description: "Reduce opponent Speed and Defense by 20%.",
			Effect:      weaken{factor: 0.8},
		},
	}
	m := make(map[string]Ability, len(list))
	for _, a := range list {
		m[a.ID] = a
	}
	return m
}

// Get looks up an ability by id.
func Get(id string) (Ability, bool) {
	a, ok := catalog[id]
	return a, ok
}

// CostOf returns the cost of id, or FallbackCost when id is unknown.
func CostOf(id string) int {
	if a, ok := catalog[id]; ok {
		return a.Cost
	}
	return FallbackCost
}

// IDs returns every catalog id in ascending order.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every catalog entry ordered by id.
func All() []Ability {
	ids := IDs()
	out := make([]Ability, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog[id])
	}
	return out
}

// Describe projects the given ids, skipping any the catalog does not know.
func Describe(ids []string) []game.AbilityMeta {
	out := make([]game.AbilityMeta, 0, len(ids))
	for _, id := range ids {
		if a, ok := catalog[id]; ok {
			out = append(out, a.Meta())
		}
	}
	return out
}
