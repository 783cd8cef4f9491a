package realtime

import (
	"time"

	"github.com/ericogr/titan-arena/internal/game"
)

// progress orders snapshots of one game. Rounds only move forward, locks
// only accumulate within a round and a finished game never changes again.
type progress struct {
	round    int
	locked   int
	finished bool
	at       time.Time
}

func progressOf(g *game.Game) progress {
	p := progress{round: g.RoundNumber, finished: g.State == game.StateFinished}
	for _, locked := range g.Meta.LockedPlayers {
		if locked {
			p.locked++
		}
	}
	return p
}

func (p progress) before(q progress) bool {
	switch {
	case p.finished:
		return false
	case q.finished:
		return true
	case p.round != q.round:
		return p.round < q.round
	default:
		return p.locked <= q.locked
	}
}

// admit records g as the latest published state of its game, or reports
// false when a newer state already went out. Caller holds pubMu.
func (h *Hub) admit(g *game.Game) bool {
	next := progressOf(g)
	if last, ok := h.published[g.ID]; ok && !last.before(next) {
		return false
	}
	next.at = h.now()
	h.published[g.ID] = next
	return true
}
