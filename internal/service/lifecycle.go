package service

import (
	"time"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"
)

// Forfeit ends the game in favour of the leaver's opponent.
func (m *Manager) Forfeit(gameID, playerID string) (*game.Game, error) {
	s := m.lookup(gameID)
	if s == nil {
		return nil, ErrGameNotFound
	}

	s.mu.Lock()
	g := s.game
	if !g.IsParticipant(playerID) {
		s.mu.Unlock()
		return nil, ErrPlayerNotInGame
	}
	if g.State == game.StateFinished {
		snap := g.Clone()
		s.mu.Unlock()
		return snap, ErrGameFinished
	}
	winner := g.Opponent(playerID)
	g.Meta.RoundLog = []string{g.Usernames[playerID] + " left the arena."}
	g.Meta.RoundSequence = nil
	outcome := m.markFinished(s, winner, ReasonForfeit, g.Usernames[playerID]+" forfeited. Victory for player "+g.Usernames[winner])
	outcome.ForfeitedBy = playerID
	snap := g.Clone()
	s.mu.Unlock()

	logging.Info("player forfeited", logging.Fields{constants.LogFieldGameID: gameID, constants.LogFieldPlayerID: playerID})
	m.finish(outcome)
	return snap, nil
}

// Remove evicts a game and its participant index entries.
func (m *Manager) Remove(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.games[gameID]
	if !ok {
		return
	}
	delete(m.games, gameID)
	s.mu.Lock()
	players := append([]string(nil), s.game.Players...)
	s.mu.Unlock()
	for _, p := range players {
		if m.byPlayer[p] == gameID {
			delete(m.byPlayer, p)
		}
	}
}

// PruneFinished removes games that finished more than retention ago and
// returns how many were evicted.
func (m *Manager) PruneFinished(now time.Time, retention time.Duration) int {
	m.mu.RLock()
	var stale []string
	for id, s := range m.games {
		s.mu.Lock()
		if s.game.State == game.StateFinished && now.Sub(s.finishedAt) >= retention {
			stale = append(stale, id)
		}
		s.mu.Unlock()
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.Remove(id)
	}
	return len(stale)
}
