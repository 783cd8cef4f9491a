package service

import (
	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/engine"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"
)

// SubmitAction stores a player's action for the current round and resolves
// the round once every participant is locked in. Protocol violations are
// logged and dropped: the unchanged snapshot is returned (nil for an unknown
// game) and the result is nil.
func (m *Manager) SubmitAction(gameID, playerID string, action game.Action) (*game.Game, *game.RoundResult) {
	s := m.lookup(gameID)
	if s == nil {
		logging.Info("action dropped: unknown game", logging.Fields{constants.LogFieldGameID: gameID, constants.LogFieldPlayerID: playerID})
		return nil, nil
	}

	s.mu.Lock()
	result, outcome := m.submitLocked(s, playerID, action)
	snap := s.game.Clone()
	s.mu.Unlock()

	m.finish(outcome)
	return snap, result
}

func (m *Manager) submitLocked(s *session, playerID string, action game.Action) (*game.RoundResult, *Outcome) {
	g := s.game
	fields := logging.Fields{constants.LogFieldGameID: g.ID, constants.LogFieldPlayerID: playerID, constants.LogFieldAction: string(action.Kind)}
	switch {
	case !g.IsParticipant(playerID):
		logging.Info("action dropped: player not in game", fields)
		return nil, nil
	case g.State != game.StateBattle:
		logging.Info("action dropped: game not in battle", fields)
		return nil, nil
	case !action.Kind.Valid():
		logging.Info("action dropped: unknown action kind", fields)
		return nil, nil
	}

	s.pending[playerID] = action
	g.Meta.LockedPlayers[playerID] = true

	for _, p := range g.Players {
		if _, ok := s.pending[p]; !ok {
			return nil, nil
		}
	}
	return m.resolveLocked(s)
}

// resolveLocked runs the resolver over the pending buffer and applies its
// records. Caller holds s.mu and has checked every participant is locked.
func (m *Manager) resolveLocked(s *session) (*game.RoundResult, *Outcome) {
	g := s.game
	combatants := make([]engine.Combatant, 0, len(g.Players))
	for _, p := range g.Players {
		combatants = append(combatants, engine.Combatant{PlayerID: p, Username: g.Usernames[p], Titan: g.Titans[p]})
	}
	res := engine.Resolve(engine.RoundInput{
		Round:      g.RoundNumber,
		State:      g.State,
		Combatants: combatants,
		Actions:    s.pending,
		HP:         s.hp,
		Charge:     s.charge,
		Modifiers:  s.modifiers,
	}, s.rng)

	s.hp = res.HP
	s.charge = res.Charge
	s.modifiers = res.Modifiers
	s.pending = make(map[string]game.Action)
	g.RoundNumber = res.NextRound
	// meta owns its own copies; the result is handed to callers
	g.Meta.RoundLog = append([]string(nil), res.Result.RoundLog...)
	g.Meta.RoundSequence = append([]game.RoundAction(nil), res.Result.RoundSequence...)
	for p := range g.Meta.LockedPlayers {
		g.Meta.LockedPlayers[p] = false
	}
	s.syncMeta()

	logging.Debug("round resolved", logging.Fields{
		constants.LogFieldGameID: g.ID,
		constants.LogFieldRound:  res.Result.RoundNumber,
		"actions":                len(res.Result.RoundSequence),
	})

	result := res.Result
	if !res.Finished {
		g.ActionDeadline = m.deadline()
		return &result, nil
	}
	msg := "Victory for player " + g.Usernames[res.WinnerID]
	return &result, m.markFinished(s, res.WinnerID, ReasonDefeat, msg)
}
