package engine

import (
	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/game"
)

// logChoices records what every participant committed, and any debuff that
// carries into this round.
func (rc *roundContext) logChoices() {
	for _, c := range rc.in.Combatants {
		if act, ok := rc.actionOf(c.PlayerID); ok {
			rc.addf("%s chooses to %s.", c.Titan.Name, act.Kind)
		}
		if m := rc.carriedModifier(c.Titan.ID); m != 1 {
			rc.addf("%s is still weakened (speed and defense x%.2f).", c.Titan.Name, m)
		}
	}
}

// finalizeRound clamps the records and builds the resolution.
func (rc *roundContext) finalizeRound() Resolution {
	for _, c := range rc.in.Combatants {
		id := c.Titan.ID
		rc.hp[id] = clampInt(rc.hp[id], 0, c.Titan.Stats.HP)
	}
	for id, v := range rc.charge {
		rc.charge[id] = clampInt(v, 0, abilities.MaxCharge)
	}

	next := rc.in.Round
	if !rc.finished {
		next++
	}
	return Resolution{
		Result: game.RoundResult{
			RoundNumber:   rc.in.Round,
			RoundSequence: rc.seq,
			RoundLog:      rc.log,
		},
		HP:        rc.hp,
		Charge:    rc.charge,
		Modifiers: rc.speedMod,
		Finished:  rc.finished,
		WinnerID:  rc.winner,
		NextRound: next,
	}
}

// Resolve is the main entry point for resolving a round: it rolls turn
// order, executes every committed action and reports the new records. A
// finished game resolves to an empty round with unchanged records.
func Resolve(in RoundInput, rng Roller) Resolution {
	rc := newRoundContext(in, rng)
	if in.State == game.StateFinished || len(in.Combatants) < 2 {
		rc.finished = in.State == game.StateFinished
		res := rc.finalizeRound()
		res.NextRound = in.Round
		res.Modifiers = map[string]float64{}
		return res
	}

	rc.logChoices()
	plans := rc.buildPlans()
	rc.executePlans(plans)
	return rc.finalizeRound()
}
