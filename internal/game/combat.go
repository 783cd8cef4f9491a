package game

import "time"

// GameState is the lifecycle stage of a game.
type GameState string

const (
	StatePreBattle GameState = "PreBattle"
	StateBattle    GameState = "Battle"
	StateFinished  GameState = "Finished"
)

// ActionKind is the kind of action a player commits for a round.
type ActionKind string

const (
	ActionAttack  ActionKind = "Attack"
	ActionDefend  ActionKind = "Defend"
	ActionRest    ActionKind = "Rest"
	ActionAbility ActionKind = "Ability"
)

// Valid reports whether k is one of the known action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionAttack, ActionDefend, ActionRest, ActionAbility:
		return true
	}
	return false
}

// Action is a committed per-round choice. TargetID and AbilityID are player
// and catalog ids respectively and are optional depending on Kind.
type Action struct {
	Kind      ActionKind `json:"type"`
	TargetID  string     `json:"targetId,omitempty"`
	AbilityID string     `json:"abilityId,omitempty"`
}

// Outcome tags a resolved round action.
type Outcome string

const (
	OutcomeNone  Outcome = ""
	OutcomeHit   Outcome = "Hit"
	OutcomeMiss  Outcome = "Miss"
	OutcomeDeath Outcome = "Death"
)

// RoundAction is one resolved action in a round sequence. ActorID and
// TargetID are player ids.
type RoundAction struct {
	ActorID   string     `json:"actorId"`
	Action    ActionKind `json:"action"`
	TargetID  string     `json:"targetId,omitempty"`
	AbilityID string     `json:"abilityId,omitempty"`
	Result    Outcome    `json:"result,omitempty"`
}

// RoundResult is what both participants receive when a round resolves.
type RoundResult struct {
	RoundNumber   int           `json:"roundNumber"`
	RoundSequence []RoundAction `json:"roundSequence"`
	RoundLog      []string      `json:"roundLog"`
}

// AbilityMeta is the client-facing projection of a catalog ability.
type AbilityMeta struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Cost             int    `json:"cost"`
	IsDamageAbility  bool   `json:"isDamageAbility"`
	ScalesWithAttack bool   `json:"scalesWithAttack"`
}

// Participant identifies a player entering a game.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Meta carries the per-game view that clients render: readiness, the last
// round's log and sequence, and the ephemeral records keyed by titan id.
type Meta struct {
	RoundNumber    int                      `json:"roundNumber"`
	RoundLog       []string                 `json:"roundLog"`
	RoundSequence  []RoundAction            `json:"roundSequence,omitempty"`
	LockedPlayers  map[string]bool          `json:"lockedPlayers"`
	TitanHPs       map[string]int           `json:"titanHPs"`
	TitanCharges   map[string]int           `json:"titanCharges"`
	TitanAbilities map[string][]AbilityMeta `json:"titanAbilities"`
}

// Game is a snapshot of one match. Titans is keyed by player id.
type Game struct {
	ID             string            `json:"id"`
	Players        []string          `json:"players"`
	Usernames      map[string]string `json:"usernames"`
	Titans         map[string]Titan  `json:"titans"`
	State          GameState         `json:"gameState"`
	RoundNumber    int               `json:"roundNumber"`
	WinnerID       string            `json:"winnerId,omitempty"`
	Message        string            `json:"message,omitempty"`
	ActionDeadline time.Time         `json:"actionDeadline,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	Meta           Meta              `json:"meta"`
}

// IsParticipant reports whether playerID plays in g.
func (g *Game) IsParticipant(playerID string) bool {
	for _, p := range g.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// Opponent returns the first participant other than playerID.
func (g *Game) Opponent(playerID string) string {
	for _, p := range g.Players {
		if p != playerID {
			return p
		}
	}
	return ""
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Players = append([]string(nil), g.Players...)
	c.Usernames = make(map[string]string, len(g.Usernames))
	for k, v := range g.Usernames {
		c.Usernames[k] = v
	}
	c.Titans = make(map[string]Titan, len(g.Titans))
	for k, v := range g.Titans {
		c.Titans[k] = v.Clone()
	}
	c.Meta = g.Meta.clone()
	return &c
}

func (m Meta) clone() Meta {
	c := m
	c.RoundLog = append([]string(nil), m.RoundLog...)
	c.RoundSequence = append([]RoundAction(nil), m.RoundSequence...)
	c.LockedPlayers = make(map[string]bool, len(m.LockedPlayers))
	for k, v := range m.LockedPlayers {
		c.LockedPlayers[k] = v
	}
	c.TitanHPs = make(map[string]int, len(m.TitanHPs))
	for k, v := range m.TitanHPs {
		c.TitanHPs[k] = v
	}
	c.TitanCharges = make(map[string]int, len(m.TitanCharges))
	for k, v := range m.TitanCharges {
		c.TitanCharges[k] = v
	}
	c.TitanAbilities = make(map[string][]AbilityMeta, len(m.TitanAbilities))
	for k, v := range m.TitanAbilities {
		c.TitanAbilities[k] = append([]AbilityMeta(nil), v...)
	}
	return c
}
