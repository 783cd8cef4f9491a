package engine

import (
	"fmt"

	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/game"
)

// Roller is the source of uniform randoms in [0,1). *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Combatant pairs a participant with the titan fighting for them.
type Combatant struct {
	PlayerID string
	Username string
	Titan    game.Titan
}

// RoundInput is everything the resolver reads. HP, Charge and Modifiers are
// keyed by titan id and are not modified; updated copies are returned.
type RoundInput struct {
	Round      int
	State      game.GameState
	Combatants []Combatant
	Actions    map[string]game.Action
	HP         map[string]int
	Charge     map[string]int
	// Modifiers are debuff multipliers written during the previous round.
	// They scale this round's speed roll and effective defense.
	Modifiers map[string]float64
}

// Resolution is the outcome of one resolved round.
type Resolution struct {
	Result    game.RoundResult
	HP        map[string]int
	Charge    map[string]int
	Modifiers map[string]float64
	Finished  bool
	WinnerID  string
	NextRound int
}

// --- Round context and helpers ----------------------------------------
type roundContext struct {
	in       RoundInput
	rng      Roller
	hp       map[string]int
	charge   map[string]int
	shield   map[string]int
	speedMod map[string]float64
	log      []string
	seq      []game.RoundAction
	finished bool
	winner   string
}

func newRoundContext(in RoundInput, rng Roller) *roundContext {
	rc := &roundContext{
		in:       in,
		rng:      rng,
		hp:       make(map[string]int, len(in.Combatants)),
		charge:   make(map[string]int, len(in.Combatants)),
		shield:   make(map[string]int, len(in.Combatants)),
		speedMod: make(map[string]float64, len(in.Combatants)),
		log:      make([]string, 0, 16),
		seq:      make([]game.RoundAction, 0, len(in.Combatants)),
	}
	for k, v := range in.HP {
		rc.hp[k] = v
	}
	for k, v := range in.Charge {
		rc.charge[k] = v
	}
	// seed missing records the way a fresh game would
	for _, c := range in.Combatants {
		if _, ok := rc.hp[c.Titan.ID]; !ok {
			rc.hp[c.Titan.ID] = c.Titan.Stats.HP
		}
		if _, ok := rc.charge[c.Titan.ID]; !ok {
			rc.charge[c.Titan.ID] = 0
		}
	}
	return rc
}

func (rc *roundContext) add(msg string) { rc.log = append(rc.log, msg) }

func (rc *roundContext) addf(format string, args ...interface{}) {
	rc.add(fmt.Sprintf(format, args...))
}

func (rc *roundContext) actionOf(playerID string) (game.Action, bool) {
	a, ok := rc.in.Actions[playerID]
	return a, ok
}

// effectContext exposes this round's records to an ability effect.
func (rc *roundContext) effectContext(actor, target *Combatant) *abilities.Context {
	return &abilities.Context{
		AttackerID:   actor.Titan.ID,
		DefenderID:   target.Titan.ID,
		AttackerName: actor.Titan.Name,
		DefenderName: target.Titan.Name,
		Attacker:     actor.Titan.Stats,
		Defender:     target.Titan.Stats,
		HP:           rc.hp,
		Charge:       rc.charge,
		Shield:       rc.shield,
		SpeedMod:     rc.speedMod,
		Log:          &rc.log,
	}
}
