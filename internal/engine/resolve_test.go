package engine

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/game"
)

// scriptedRoller replays fixed values and then keeps returning zero.
type scriptedRoller struct {
	vals []float64
	i    int
}

func (s *scriptedRoller) Float64() float64 {
	if s.i >= len(s.vals) {
		return 0
	}
	v := s.vals[s.i]
	s.i++
	return v
}

func combatant(pid, tid string, stats game.Stats, abilityIDs ...string) Combatant {
	return Combatant{
		PlayerID: pid,
		Username: strings.ToUpper(pid),
		Titan:    game.Titan{ID: tid, PlayerID: pid, Name: "T-" + pid, Stats: stats, Abilities: abilityIDs},
	}
}

func input(a, b Combatant, actA, actB game.Action) RoundInput {
	return RoundInput{
		Round:      1,
		State:      game.StateBattle,
		Combatants: []Combatant{a, b},
		Actions:    map[string]game.Action{a.PlayerID: actA, b.PlayerID: actB},
		HP:         map[string]int{a.Titan.ID: a.Titan.Stats.HP, b.Titan.ID: b.Titan.Stats.HP},
		Charge:     map[string]int{a.Titan.ID: 0, b.Titan.ID: 0},
	}
}

func TestResolve_AttackIntoDefendKills(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 50, Attack: 20, Accuracy: 100, Speed: 10})
	d := combatant("p2", "t2", game.Stats{HP: 10, Defense: 0, Evasion: 0, Speed: 1})
	in := input(a, d, game.Action{Kind: game.ActionAttack, TargetID: "p2"}, game.Action{Kind: game.ActionDefend})
	// speed p1, speed p2, hit, crit, attack value, defend multiplier
	rng := &scriptedRoller{vals: []float64{0.9, 0.5, 0.5, 0.5, 0.5, 0.0}}

	res := Resolve(in, rng)

	if !res.Finished || res.WinnerID != "p1" {
		t.Fatalf("expected p1 to win, got finished=%v winner=%q", res.Finished, res.WinnerID)
	}
	if res.HP["t2"] != 0 {
		t.Fatalf("expected defender HP 0, got %d", res.HP["t2"])
	}
	if res.Charge["t2"] != 20 {
		t.Fatalf("expected defend bonus of 20 charge, got %d", res.Charge["t2"])
	}
	if res.Charge["t1"] != 10 {
		t.Fatalf("expected attacker charge 10, got %d", res.Charge["t1"])
	}
	if len(res.Result.RoundSequence) != 1 {
		t.Fatalf("expected one processed action, got %d", len(res.Result.RoundSequence))
	}
	if res.Result.RoundSequence[0].Result != game.OutcomeDeath {
		t.Fatalf("expected Death outcome, got %q", res.Result.RoundSequence[0].Result)
	}
	if res.Result.RoundNumber != 1 || res.NextRound != 1 {
		t.Fatalf("round must not advance on finish, got result=%d next=%d", res.Result.RoundNumber, res.NextRound)
	}
}

func TestResolve_DefendMultiplierReducesDamage(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 50, Attack: 20, Accuracy: 0, Speed: 10})
	d := combatant("p2", "t2", game.Stats{HP: 100, Defense: 10, Speed: 1})
	in := input(a, d, game.Action{Kind: game.ActionAttack}, game.Action{Kind: game.ActionDefend})
	// attack value 20*(1+0.5)=30; defense 10*(1.5+0.5*0.5)=17.5; damage round(12.5)=13
	rng := &scriptedRoller{vals: []float64{0.9, 0.1, 0.0, 0.99, 0.5, 0.5}}

	res := Resolve(in, rng)

	if res.HP["t2"] != 87 {
		t.Fatalf("expected HP 87, got %d", res.HP["t2"])
	}
	if res.Result.RoundSequence[0].Result != game.OutcomeHit {
		t.Fatalf("expected Hit, got %q", res.Result.RoundSequence[0].Result)
	}
	if res.NextRound != 2 {
		t.Fatalf("expected round to advance to 2, got %d", res.NextRound)
	}
}

func TestResolve_MissStillRewardsDefender(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 50, Attack: 20, Accuracy: 0, Speed: 10})
	d := combatant("p2", "t2", game.Stats{HP: 100, Evasion: 100, Speed: 1})
	in := input(a, d, game.Action{Kind: game.ActionAttack}, game.Action{Kind: game.ActionDefend})
	// hit chance clamps to 0.05; 0.5 misses
	rng := &scriptedRoller{vals: []float64{0.9, 0.1, 0.5}}

	res := Resolve(in, rng)

	if res.HP["t2"] != 100 {
		t.Fatalf("miss must not change HP, got %d", res.HP["t2"])
	}
	if res.Charge["t2"] != 20 {
		t.Fatalf("expected defender charge 20, got %d", res.Charge["t2"])
	}
	if res.Charge["t1"] != 0 {
		t.Fatalf("attacker must not gain charge on miss, got %d", res.Charge["t1"])
	}
	if got := res.Result.RoundSequence[0].Result; got != game.OutcomeMiss {
		t.Fatalf("expected Miss, got %q", got)
	}
}

func TestResolve_InsufficientChargeIsMiss(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 50, Attack: 20, Speed: 10}, "shock")
	d := combatant("p2", "t2", game.Stats{HP: 40, Speed: 1})
	in := input(a, d, game.Action{Kind: game.ActionAbility, AbilityID: "shock"}, game.Action{Kind: game.ActionRest})
	rng := &scriptedRoller{vals: []float64{0.9, 0.1}}

	res := Resolve(in, rng)

	if res.Charge["t1"] != 0 {
		t.Fatalf("expected charge unchanged at 0, got %d", res.Charge["t1"])
	}
	if res.HP["t1"] != 50 || res.HP["t2"] != 40 {
		t.Fatalf("HP must be unchanged, got %v", res.HP)
	}
	if res.Result.RoundSequence[0].Result != game.OutcomeMiss {
		t.Fatalf("expected Miss, got %q", res.Result.RoundSequence[0].Result)
	}
	found := false
	for _, l := range res.Result.RoundLog {
		if strings.Contains(l, "insufficient charge") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected insufficient charge log line, got %v", res.Result.RoundLog)
	}
	if len(res.Result.RoundSequence) != 2 {
		t.Fatalf("expected both actions in sequence, got %d", len(res.Result.RoundSequence))
	}
}

func TestResolve_RestScalesWithStamina(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 10, Stamina: 0, Speed: 5})
	b := combatant("p2", "t2", game.Stats{HP: 10, Stamina: 100, Speed: 5})
	in := input(a, b, game.Action{Kind: game.ActionRest}, game.Action{Kind: game.ActionRest})
	in.Charge["t2"] = 70

	res := Resolve(in, &scriptedRoller{vals: []float64{0.5, 0.5}})

	if res.Charge["t1"] != 20 {
		t.Fatalf("expected +20 with stamina 0, got %d", res.Charge["t1"])
	}
	if res.Charge["t2"] != 100 {
		t.Fatalf("expected +40 capped at 100, got %d", res.Charge["t2"])
	}
	// equal rolls keep participant order
	if res.Result.RoundSequence[0].ActorID != "p1" {
		t.Fatalf("expected p1 first on tied rolls, got %s", res.Result.RoundSequence[0].ActorID)
	}
}

func TestResolve_UnownedAndMissingAbilityAreMisses(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 10, Speed: 5}, "shield")
	b := combatant("p2", "t2", game.Stats{HP: 10, Speed: 1})
	in := input(a, b, game.Action{Kind: game.ActionAbility, AbilityID: "overdrive"}, game.Action{Kind: game.ActionAbility})
	in.Charge["t1"] = 80
	in.Charge["t2"] = 80

	res := Resolve(in, &scriptedRoller{vals: []float64{0.9, 0.1}})

	if res.Charge["t1"] != 80 || res.Charge["t2"] != 80 {
		t.Fatalf("no cost may be deducted, got %v", res.Charge)
	}
	for _, ra := range res.Result.RoundSequence {
		if ra.Result != game.OutcomeMiss {
			t.Fatalf("expected Miss for %s, got %q", ra.ActorID, ra.Result)
		}
	}
}

func TestResolve_AbilityMissStillSpendsCost(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 10, Attack: 10, Accuracy: 0, Speed: 5}, "focused_strike")
	b := combatant("p2", "t2", game.Stats{HP: 100, Evasion: 100, Speed: 1})
	in := input(a, b, game.Action{Kind: game.ActionAbility, AbilityID: "focused_strike"}, game.Action{Kind: game.ActionDefend})
	in.Charge["t1"] = 50

	res := Resolve(in, &scriptedRoller{vals: []float64{0.9, 0.1, 0.9}})

	if res.Charge["t1"] != 25 {
		t.Fatalf("expected cost spent once (25 left), got %d", res.Charge["t1"])
	}
	if res.HP["t2"] != 100 {
		t.Fatalf("miss must not deal damage, got %d", res.HP["t2"])
	}
}

func TestResolve_CriticalBoostsScalingAbility(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 10, Attack: 10, Accuracy: 50, CriticalChance: 100, Speed: 5}, "focused_strike")
	b := combatant("p2", "t2", game.Stats{HP: 100, Speed: 1})
	in := input(a, b, game.Action{Kind: game.ActionAbility, AbilityID: "focused_strike"}, game.Action{Kind: game.ActionDefend})
	in.Charge["t1"] = 30

	res := Resolve(in, &scriptedRoller{vals: []float64{0.9, 0.1, 0.0, 0.0}})

	// round(10*1.5*1.5)=23
	if res.HP["t2"] != 77 {
		t.Fatalf("expected HP 77 after critical Focused Strike, got %d", res.HP["t2"])
	}
	if res.Charge["t1"] != 5 {
		t.Fatalf("expected 5 charge left, got %d", res.Charge["t1"])
	}
}

// Debuffs written in one round scale the next round's speed roll and defense.
func TestResolve_DebuffCarriesIntoNextRound(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 100, Attack: 20, Accuracy: 50, Speed: 10}, "weaken")
	d := combatant("p2", "t2", game.Stats{HP: 100, Defense: 10, Speed: 10})
	in := input(a, d, game.Action{Kind: game.ActionAbility, AbilityID: "weaken"}, game.Action{Kind: game.ActionDefend})
	in.Charge["t1"] = 25

	first := Resolve(in, &scriptedRoller{vals: []float64{0.9, 0.1}})
	if got := first.Modifiers["t2"]; got != 0.8 {
		t.Fatalf("expected modifier 0.8 recorded for defender, got %v", got)
	}

	next := input(a, d, game.Action{Kind: game.ActionAttack}, game.Action{Kind: game.ActionRest})
	next.Round = first.NextRound
	next.HP = first.HP
	next.Charge = first.Charge
	next.Modifiers = first.Modifiers
	// rolls tie on raw value; the carried 0.8 puts p2 behind p1.
	// hit, no crit, attack value 20; defense 10*0.8=8; damage 12
	second := Resolve(next, &scriptedRoller{vals: []float64{0.5, 0.5, 0.0, 0.99, 0.0}})

	if second.HP["t2"] != 88 {
		t.Fatalf("expected weakened defense to let 12 through (HP 88), got %d", second.HP["t2"])
	}
	if len(second.Modifiers) != 0 {
		t.Fatalf("modifiers must reset after one round, got %v", second.Modifiers)
	}
	found := false
	for _, l := range second.Result.RoundLog {
		if strings.Contains(l, "still weakened") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected carried debuff log line, got %v", second.Result.RoundLog)
	}
}

func TestResolve_ShieldAbsorbsAttack(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 100, Speed: 10}, "shield")
	b := combatant("p2", "t2", game.Stats{HP: 100, Attack: 10, Accuracy: 50, Speed: 1})
	in := input(a, b, game.Action{Kind: game.ActionAbility, AbilityID: "shield"}, game.Action{Kind: game.ActionAttack})
	in.Charge["t1"] = 30
	// p1 first; p2 hits for 10*(1+0.5)=15, 30 shield absorbs all
	res := Resolve(in, &scriptedRoller{vals: []float64{0.9, 0.1, 0.0, 0.5, 0.5}})

	if res.HP["t1"] != 100 {
		t.Fatalf("expected shield to absorb all damage, got HP %d", res.HP["t1"])
	}
	if res.Result.RoundSequence[1].Result != game.OutcomeMiss {
		t.Fatalf("fully absorbed attack is a Miss, got %q", res.Result.RoundSequence[1].Result)
	}
	if res.Charge["t2"] != 0 {
		t.Fatalf("no charge for zero damage, got %d", res.Charge["t2"])
	}
}

type panicEffect struct{}

func (panicEffect) Apply(*abilities.Context) { panic("boom") }

func TestApplyEffectRecoversPanic(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 10})
	b := combatant("p2", "t2", game.Stats{HP: 10})
	rc := newRoundContext(input(a, b, game.Action{Kind: game.ActionRest}, game.Action{Kind: game.ActionRest}), &scriptedRoller{})
	ab := abilities.Ability{ID: "broken", Name: "Broken", Effect: panicEffect{}}

	if rc.applyEffect(ab, rc.effectContext(&rc.in.Combatants[0], &rc.in.Combatants[1])) {
		t.Fatalf("expected failure from panicking effect")
	}
	if len(rc.log) != 1 || !strings.Contains(rc.log[0], "failed to use Broken") {
		t.Fatalf("expected failure line, got %v", rc.log)
	}
}

func TestResolve_FinishedGameIsNoop(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 10, Attack: 50, Speed: 5})
	b := combatant("p2", "t2", game.Stats{HP: 10, Speed: 1})
	in := input(a, b, game.Action{Kind: game.ActionAttack}, game.Action{Kind: game.ActionAttack})
	in.State = game.StateFinished
	in.Round = 4

	res := Resolve(in, rand.New(rand.NewSource(1)))

	if len(res.Result.RoundSequence) != 0 || res.NextRound != 4 || res.HP["t2"] != 10 {
		t.Fatalf("finished game must not resolve, got %+v", res)
	}
}

func TestResolve_RecordsStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	kinds := []game.ActionKind{game.ActionAttack, game.ActionDefend, game.ActionRest, game.ActionAbility}
	ids := abilities.IDs()
	for g := 0; g < 200; g++ {
		a := combatant("p1", "t1", game.Stats{HP: 30 + rng.Intn(40), Attack: rng.Intn(30), Defense: rng.Intn(15), Speed: rng.Intn(10), Stamina: rng.Intn(100), Accuracy: rng.Intn(50), Evasion: rng.Intn(50), CriticalChance: rng.Intn(50)}, ids[rng.Intn(len(ids))], ids[rng.Intn(len(ids))])
		b := combatant("p2", "t2", game.Stats{HP: 30 + rng.Intn(40), Attack: rng.Intn(30), Defense: rng.Intn(15), Speed: rng.Intn(10), Stamina: rng.Intn(100), Accuracy: rng.Intn(50), Evasion: rng.Intn(50), CriticalChance: rng.Intn(50)}, ids[rng.Intn(len(ids))])
		in := input(a, b, game.Action{}, game.Action{})
		for round := 0; round < 50; round++ {
			pick := func(c Combatant) game.Action {
				k := kinds[rng.Intn(len(kinds))]
				act := game.Action{Kind: k}
				if k == game.ActionAbility && len(c.Titan.Abilities) > 0 {
					act.AbilityID = c.Titan.Abilities[rng.Intn(len(c.Titan.Abilities))]
				}
				return act
			}
			in.Actions = map[string]game.Action{"p1": pick(a), "p2": pick(b)}
			before := in.Round
			res := Resolve(in, rng)
			for _, c := range []Combatant{a, b} {
				hp := res.HP[c.Titan.ID]
				if hp < 0 || hp > c.Titan.Stats.HP {
					t.Fatalf("HP out of bounds: %d (max %d)", hp, c.Titan.Stats.HP)
				}
				ch := res.Charge[c.Titan.ID]
				if ch < 0 || ch > abilities.MaxCharge {
					t.Fatalf("charge out of bounds: %d", ch)
				}
			}
			if len(res.Result.RoundSequence) > 2 {
				t.Fatalf("sequence longer than participants: %d", len(res.Result.RoundSequence))
			}
			if res.Finished {
				if res.NextRound != before {
					t.Fatalf("round advanced on finish")
				}
				break
			}
			if res.NextRound != before+1 {
				t.Fatalf("expected round %d, got %d", before+1, res.NextRound)
			}
			in.Round = res.NextRound
			in.HP = res.HP
			in.Charge = res.Charge
			in.Modifiers = res.Modifiers
		}
	}
}

func TestResolve_AbilityCostDeductedOnceBeforeChargeEffect(t *testing.T) {
	a := combatant("p1", "t1", game.Stats{HP: 50, Stamina: 0, Speed: 10}, "quick_charge")
	d := combatant("p2", "t2", game.Stats{HP: 40, Speed: 1})
	in := input(a, d, game.Action{Kind: game.ActionAbility, AbilityID: "quick_charge"}, game.Action{Kind: game.ActionDefend})
	in.Charge["t1"] = 5

	res := Resolve(in, &scriptedRoller{})

	// 5 - 5 cost + 40 gain
	if res.Charge["t1"] != 40 {
		t.Fatalf("expected charge 40, got %d", res.Charge["t1"])
	}
	if res.Charge["t2"] != 0 {
		t.Fatalf("defender was never attacked, expected charge 0, got %d", res.Charge["t2"])
	}
}
