package engine

import (
	"math"

	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/game"
)

// rollHit draws one uniform and compares it with the hit chance.
func (rc *roundContext) rollHit(actor, target *Combatant) bool {
	return rc.rng.Float64() <= hitChance(actor.Titan.Stats.Accuracy, target.Titan.Stats.Evasion)
}

func (rc *roundContext) rollCrit(actor *Combatant) bool {
	return rc.rng.Float64() < float64(actor.Titan.Stats.CriticalChance)/100
}

func (rc *roundContext) isDefending(c *Combatant) bool {
	act, ok := rc.actionOf(c.PlayerID)
	return ok && act.Kind == game.ActionDefend
}

// defendBonus rewards a defending titan that was targeted by an attack.
func (rc *roundContext) defendBonus(c *Combatant) {
	now := rc.addCharge(c.Titan.ID, defendChargeGain)
	rc.addf("%s defended and charges special by +%d (now %d%%).", c.Titan.Name, defendChargeGain, now)
}

func (rc *roundContext) execAttack(plan *plannedAction, ra *game.RoundAction) {
	actor, target := plan.actor, plan.target
	defending := rc.isDefending(target)

	if !rc.rollHit(actor, target) {
		ra.Result = game.OutcomeMiss
		rc.addf("%s evades the attack by %s.", target.Titan.Name, actor.Titan.Name)
		if defending {
			rc.defendBonus(target)
		}
		return
	}

	crit := rc.rollCrit(actor)
	if crit {
		rc.addf("%s lands a critical hit!", actor.Titan.Name)
	}

	attackValue := float64(actor.Titan.Stats.Attack) * (1 + rc.rng.Float64())
	mult := 1.0
	if defending {
		mult = defendMultiplierMin + rc.rng.Float64()*defendMultiplierVar
	}
	effectiveDef := float64(target.Titan.Stats.Defense) * rc.carriedModifier(target.Titan.ID) * mult
	raw := math.Max(0, attackValue-effectiveDef)
	if crit {
		raw *= critMultiplier
	}
	dmg := abilities.Round(raw)
	ec := rc.effectContext(actor, target)
	dmg = ec.Absorb(target.Titan.ID, target.Titan.Name, dmg)

	before := rc.hp[target.Titan.ID]
	after := before - dmg
	if after < 0 {
		after = 0
	}
	rc.hp[target.Titan.ID] = after

	if dmg > 0 {
		ra.Result = game.OutcomeHit
	} else {
		ra.Result = game.OutcomeMiss
	}
	if defending {
		rc.defendBonus(target)
	}
	rc.addf("%s deals %d damage to %s (HP: %d -> %d).", actor.Titan.Name, dmg, target.Titan.Name, before, after)

	if dmg > 0 {
		gain := staminaGain(attackChargeBase, actor.Titan.Stats.Stamina)
		now := rc.addCharge(actor.Titan.ID, gain)
		rc.addf("%s gains +%d charge from attacking (now %d%%).", actor.Titan.Name, gain, now)
	}

	rc.checkDefeat(plan, ra)
}

// execRest grants stamina-scaled charge.
func (rc *roundContext) execRest(plan *plannedAction) {
	gain := staminaGain(restChargeBase, plan.actor.Titan.Stats.Stamina)
	now := rc.addCharge(plan.actor.Titan.ID, gain)
	rc.addf("%s rests and charges special by +%d (now %d%%).", plan.actor.Titan.Name, gain, now)
}

// checkDefeat finishes the game when the target has no HP left.
func (rc *roundContext) checkDefeat(plan *plannedAction, ra *game.RoundAction) {
	if rc.hp[plan.target.Titan.ID] > 0 {
		return
	}
	rc.finished = true
	rc.winner = plan.actor.PlayerID
	ra.Result = game.OutcomeDeath
	winner := plan.actor.Username
	if winner == "" {
		winner = plan.actor.PlayerID
	}
	rc.addf("%s is defeated. %s wins.", plan.target.Titan.Name, winner)
}
