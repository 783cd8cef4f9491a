package service

import (
	"time"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"
)

// ExpireStalled applies timeout resolution to every battle whose deadline
// has passed:
// - nobody submitted -> finish the game with no winner
// - someone submitted -> auto-submit rest for the players that did not
// It returns one update per game it touched.
func (m *Manager) ExpireStalled(now time.Time) []Update {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.games))
	for _, s := range m.games {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	var updates []Update
	for _, s := range sessions {
		s.mu.Lock()
		u, outcome, ok := m.expireLocked(s, now)
		s.mu.Unlock()
		m.finish(outcome)
		if ok {
			updates = append(updates, u)
		}
	}
	return updates
}

func (m *Manager) expireLocked(s *session, now time.Time) (Update, *Outcome, bool) {
	g := s.game
	if g.State != game.StateBattle || g.ActionDeadline.IsZero() || now.Before(g.ActionDeadline) {
		return Update{}, nil, false
	}

	var missing []string
	for _, p := range g.Players {
		if _, ok := s.pending[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return Update{}, nil, false
	}

	if len(missing) == len(g.Players) {
		logging.Info("no player submitted before the deadline; finishing game", logging.Fields{constants.LogFieldGameID: g.ID})
		g.Meta.RoundLog = []string{"Round timed out: no player submitted an action within the allotted time."}
		g.Meta.RoundSequence = nil
		outcome := m.markFinished(s, "", ReasonInactivity, "Match ended due to inactivity")
		return Update{Game: g.Clone()}, outcome, true
	}

	for _, p := range missing {
		logging.Info("auto-submitting rest for inactive player", logging.Fields{constants.LogFieldGameID: g.ID, constants.LogFieldPlayerID: p})
		s.pending[p] = game.Action{Kind: game.ActionRest}
		g.Meta.LockedPlayers[p] = true
	}
	result, outcome := m.resolveLocked(s)
	return Update{Game: g.Clone(), Result: result}, outcome, true
}
