// Package service owns the live games: it buffers committed actions, runs
// the resolver once every participant is locked in and hands finished games
// to an outcome recorder.
package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/engine"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"
)

var (
	ErrNotEnoughPlayers     = errors.New("a game needs at least two participants")
	ErrDuplicateParticipant = errors.New("participant listed twice")
	ErrMissingCombatant     = errors.New("participant has no assigned titan")
	ErrPlayerInGame         = errors.New("participant already in a live game")
	ErrGameNotFound         = errors.New("game not found")
	ErrPlayerNotInGame      = errors.New("player not in game")
	ErrGameFinished         = errors.New("game is finished")
)

// Outcome reasons.
const (
	ReasonDefeat     = "defeat"
	ReasonInactivity = "inactivity"
	ReasonForfeit    = "forfeit"
)

// Outcome describes a finished game for the recorder.
type Outcome struct {
	GameID      string
	Players     []string
	Usernames   map[string]string
	Titans      map[string]game.Titan
	WinnerID    string
	ForfeitedBy string
	Reason      string
	Rounds      int
	FinalLog    []string
	EndedAt     time.Time
}

// Recorder receives every finished game exactly once.
type Recorder interface {
	RecordOutcome(ctx context.Context, o Outcome) error
}

// Update pairs a game snapshot with the round result that produced it, if any.
type Update struct {
	Game   *game.Game
	Result *game.RoundResult
}

// Options configures a Manager. Zero values pick sensible defaults.
type Options struct {
	// ActionTimeout is the per-round deadline; zero disables it.
	ActionTimeout time.Duration
	Recorder      Recorder
	// NewRoller builds the random source of each new game.
	NewRoller func() engine.Roller
	Now       func() time.Time
}

type session struct {
	mu         sync.Mutex
	game       *game.Game
	pending    map[string]game.Action
	hp         map[string]int
	charge     map[string]int
	modifiers  map[string]float64
	rng        engine.Roller
	finishedAt time.Time
}

// Manager owns the collection of live games. Each game is guarded by its own
// mutex; the collection lock is only held to find or insert a game.
type Manager struct {
	mu       sync.RWMutex
	games    map[string]*session
	byPlayer map[string]string
	opts     Options
}

// NewManager creates an empty Manager.
func NewManager(opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRoller == nil {
		var seedMu sync.Mutex
		seeder := rand.New(rand.NewSource(time.Now().UnixNano()))
		opts.NewRoller = func() engine.Roller {
			seedMu.Lock()
			defer seedMu.Unlock()
			return rand.New(rand.NewSource(seeder.Int63()))
		}
	}
	return &Manager{
		games:    make(map[string]*session),
		byPlayer: make(map[string]string),
		opts:     opts,
	}
}

func (m *Manager) lookup(gameID string) *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.games[gameID]
}

// GetGame returns a snapshot of the game, or false when it does not exist.
func (m *Manager) GetGame(gameID string) (*game.Game, bool) {
	s := m.lookup(gameID)
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Clone(), true
}

// GetGameByParticipant returns the most recent game the player joined.
func (m *Manager) GetGameByParticipant(playerID string) (*game.Game, bool) {
	m.mu.RLock()
	id, ok := m.byPlayer[playerID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return m.GetGame(id)
}

// Active lists the ids of games that have not finished.
func (m *Manager) Active() []string {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.games))
	for _, s := range m.games {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		if s.game.State != game.StateFinished {
			ids = append(ids, s.game.ID)
		}
		s.mu.Unlock()
	}
	return ids
}

// finish hands a finished game to the recorder. Callers must not hold the
// game's lock.
func (m *Manager) finish(o *Outcome) {
	if o == nil {
		return
	}
	logging.Info("game finished", logging.Fields{
		constants.LogFieldGameID: o.GameID,
		constants.LogFieldReason: o.Reason,
		"winner_id":              o.WinnerID,
		constants.LogFieldRound:  o.Rounds,
	})
	if m.opts.Recorder == nil {
		return
	}
	if err := m.opts.Recorder.RecordOutcome(context.Background(), *o); err != nil {
		logging.Error("failed to record game outcome", err, logging.Fields{constants.LogFieldGameID: o.GameID})
	}
}

// markFinished closes the game and builds its outcome. Caller holds s.mu.
func (m *Manager) markFinished(s *session, winnerID, reason, message string) *Outcome {
	g := s.game
	g.State = game.StateFinished
	g.WinnerID = winnerID
	g.Message = message
	g.ActionDeadline = time.Time{}
	s.pending = make(map[string]game.Action)
	for pid := range g.Meta.LockedPlayers {
		g.Meta.LockedPlayers[pid] = false
	}
	s.finishedAt = m.opts.Now()

	titans := make(map[string]game.Titan, len(g.Titans))
	for k, v := range g.Titans {
		titans[k] = v.Clone()
	}
	usernames := make(map[string]string, len(g.Usernames))
	for k, v := range g.Usernames {
		usernames[k] = v
	}
	return &Outcome{
		GameID:    g.ID,
		Players:   append([]string(nil), g.Players...),
		Usernames: usernames,
		Titans:    titans,
		WinnerID:  winnerID,
		Reason:    reason,
		Rounds:    g.RoundNumber,
		FinalLog:  append([]string(nil), g.Meta.RoundLog...),
		EndedAt:   s.finishedAt,
	}
}

func (m *Manager) deadline() time.Time {
	if m.opts.ActionTimeout <= 0 {
		return time.Time{}
	}
	return m.opts.Now().Add(m.opts.ActionTimeout)
}
