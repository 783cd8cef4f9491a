package service

import (
	"fmt"

	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"

	"github.com/google/uuid"
)

// CreateGame starts a game between the participants using the titans in
// assignment (keyed by player id). HP starts at each titan's HP stat and
// charge at zero.
func (m *Manager) CreateGame(participants []game.Participant, assignment map[string]game.Titan) (*game.Game, error) {
	if len(participants) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	seen := make(map[string]struct{}, len(participants))
	titanIDs := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.ID)
		}
		seen[p.ID] = struct{}{}
		t, ok := assignment[p.ID]
		if !ok || t.ID == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingCombatant, p.ID)
		}
		if _, dup := titanIDs[t.ID]; dup {
			return nil, fmt.Errorf("%w: titan %s", ErrDuplicateParticipant, t.ID)
		}
		titanIDs[t.ID] = struct{}{}
	}

	g := &game.Game{
		ID:          uuid.NewString(),
		Players:     make([]string, 0, len(participants)),
		Usernames:   make(map[string]string, len(participants)),
		Titans:      make(map[string]game.Titan, len(participants)),
		State:       game.StatePreBattle,
		RoundNumber: 1,
		CreatedAt:   m.opts.Now(),
		Meta: game.Meta{
			RoundNumber:    1,
			RoundLog:       []string{},
			LockedPlayers:  make(map[string]bool, len(participants)),
			TitanHPs:       make(map[string]int, len(participants)),
			TitanCharges:   make(map[string]int, len(participants)),
			TitanAbilities: make(map[string][]game.AbilityMeta, len(participants)),
		},
	}
	s := &session{
		game:      g,
		pending:   make(map[string]game.Action),
		hp:        make(map[string]int, len(participants)),
		charge:    make(map[string]int, len(participants)),
		modifiers: make(map[string]float64),
		rng:       m.opts.NewRoller(),
	}
	for _, p := range participants {
		t := assignment[p.ID].Clone()
		t.PlayerID = p.ID
		g.Players = append(g.Players, p.ID)
		g.Usernames[p.ID] = p.Username
		g.Titans[p.ID] = t
		g.Meta.LockedPlayers[p.ID] = false
		g.Meta.TitanAbilities[t.ID] = abilities.Describe(t.Abilities)
		s.hp[t.ID] = t.Stats.HP
		s.charge[t.ID] = 0
	}
	s.syncMeta()

	// both sides are seeded, so the battle can begin
	g.State = game.StateBattle
	g.ActionDeadline = m.deadline()
	snap := g.Clone()

	m.mu.Lock()
	for _, p := range participants {
		if id, ok := m.byPlayer[p.ID]; ok {
			if other := m.games[id]; other != nil && !other.isFinished() {
				m.mu.Unlock()
				return nil, fmt.Errorf("%w: %s", ErrPlayerInGame, p.ID)
			}
		}
	}
	m.games[g.ID] = s
	for _, p := range participants {
		m.byPlayer[p.ID] = g.ID
	}
	m.mu.Unlock()

	logging.Info("game created", logging.Fields{constants.LogFieldGameID: g.ID, "players": snap.Players})
	return snap, nil
}

func (s *session) isFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.State == game.StateFinished
}

// syncMeta copies the ephemeral records into the client-facing meta.
func (s *session) syncMeta() {
	meta := &s.game.Meta
	meta.RoundNumber = s.game.RoundNumber
	meta.TitanHPs = make(map[string]int, len(s.hp))
	for k, v := range s.hp {
		meta.TitanHPs[k] = v
	}
	meta.TitanCharges = make(map[string]int, len(s.charge))
	for k, v := range s.charge {
		meta.TitanCharges[k] = v
	}
}
