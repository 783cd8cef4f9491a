package engine

import (
	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"
)

// executePlans resolves plans in order until the game finishes.
func (rc *roundContext) executePlans(plans []plannedAction) {
	for i := range plans {
		if rc.finished {
			break
		}
		plan := &plans[i]
		if plan.target == nil {
			continue
		}
		// dead titans neither act nor get acted upon
		if rc.hp[plan.target.Titan.ID] <= 0 || rc.hp[plan.actor.Titan.ID] <= 0 {
			continue
		}

		ra := game.RoundAction{ActorID: plan.actor.PlayerID, Action: plan.action.Kind}
		switch plan.action.Kind {
		case game.ActionAttack:
			ra.TargetID = plan.target.PlayerID
			rc.execAttack(plan, &ra)
		case game.ActionAbility:
			ra.TargetID = plan.target.PlayerID
			ra.AbilityID = plan.action.AbilityID
			rc.execAbility(plan, &ra)
		case game.ActionRest:
			rc.execRest(plan)
		case game.ActionDefend:
			// realised when the opponent attacks
		default:
			continue
		}
		rc.seq = append(rc.seq, ra)
	}
}

func (rc *roundContext) execAbility(plan *plannedAction, ra *game.RoundAction) {
	actor, target := plan.actor, plan.target
	id := plan.action.AbilityID
	if id == "" {
		ra.Result = game.OutcomeMiss
		rc.addf("%s attempted Ability but no abilityId provided.", actor.Titan.Name)
		return
	}
	ab, ok := abilities.Get(id)
	if !ok {
		ra.Result = game.OutcomeMiss
		rc.addf("%s attempted Ability but ability data missing for id=%s.", actor.Titan.Name, id)
		return
	}
	if !actor.Titan.HasAbility(id) {
		ra.Result = game.OutcomeMiss
		rc.addf("%s attempted %s but has not learned it.", actor.Titan.Name, ab.Name)
		return
	}
	cost := abilities.CostOf(id)
	if rc.charge[actor.Titan.ID] < cost {
		ra.Result = game.OutcomeMiss
		rc.addf("%s attempted %s but has insufficient charge.", actor.Titan.Name, ab.Name)
		return
	}

	// deducted once, before the effect runs, so effects that read charge see the net value
	rc.charge[actor.Titan.ID] -= cost

	ec := rc.effectContext(actor, target)
	if ab.IsDamage {
		if !rc.rollHit(actor, target) {
			ra.Result = game.OutcomeMiss
			rc.addf("%s evades %s's %s.", target.Titan.Name, actor.Titan.Name, ab.Name)
			return
		}
		if rc.rollCrit(actor) {
			rc.addf("%s lands a critical hit!", actor.Titan.Name)
			if ab.ScalesWithAttack {
				ec.AttackMultiplier = critMultiplier
			}
		}
	}

	if rc.applyEffect(ab, ec) {
		ra.Result = game.OutcomeHit
	} else {
		ra.Result = game.OutcomeMiss
	}
	rc.checkDefeat(plan, ra)
}

// applyEffect runs an ability effect, turning a panic into a failure line.
func (rc *roundContext) applyEffect(ab abilities.Ability, ec *abilities.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			rc.addf("%s failed to use %s.", ec.AttackerName, ab.Name)
			logging.Error("ability effect panicked", nil, logging.Fields{
				constants.LogFieldAbilityID: ab.ID,
				constants.LogFieldTitanID:   ec.AttackerID,
				"panic":                     r,
			})
		}
	}()
	ab.Effect.Apply(ec)
	return true
}
