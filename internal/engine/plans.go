package engine

import (
	"sort"

	"github.com/ericogr/titan-arena/internal/game"
)

// --- Planned action model ---------------------------------------------
type plannedAction struct {
	actor  *Combatant
	target *Combatant
	action game.Action
	roll   float64
}

// buildPlans rolls speed for every combatant in participant order and returns
// the committed actions sorted by roll, highest first. Equal rolls keep
// participant order.
func (rc *roundContext) buildPlans() []plannedAction {
	plans := make([]plannedAction, 0, len(rc.in.Combatants))
	for i := range rc.in.Combatants {
		c := &rc.in.Combatants[i]
		roll := float64(c.Titan.Stats.Speed) * rc.carriedModifier(c.Titan.ID) * rc.rng.Float64()
		act, ok := rc.actionOf(c.PlayerID)
		if !ok {
			continue
		}
		plans = append(plans, plannedAction{
			actor:  c,
			target: rc.targetFor(c.PlayerID, act.TargetID),
			action: act,
			roll:   roll,
		})
	}
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].roll > plans[j].roll })
	return plans
}

// targetFor honours an explicit target when it names another participant and
// falls back to the first opponent otherwise.
func (rc *roundContext) targetFor(actorID, requested string) *Combatant {
	var first *Combatant
	for i := range rc.in.Combatants {
		c := &rc.in.Combatants[i]
		if c.PlayerID == actorID {
			continue
		}
		if c.PlayerID == requested {
			return c
		}
		if first == nil {
			first = c
		}
	}
	return first
}
