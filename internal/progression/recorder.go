package progression

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/engine"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"
	"github.com/ericogr/titan-arena/internal/service"
	"github.com/ericogr/titan-arena/internal/storage"
)

// Store is the slice of the repository the recorder writes to.
type Store interface {
	GetTitan(id string) (*game.Titan, error)
	SaveTitan(t *game.Titan) error
	SaveMatch(m *game.MatchRecord) error
	UpdateStatsOnGameEnd(m *game.MatchRecord, names map[string]string) error
}

// Recorder persists finished games. Only games with a winner award
// experience; a player who forfeits earns nothing.
type Recorder struct {
	store Store
	mu    sync.Mutex
	rng   engine.Roller
}

var _ service.Recorder = (*Recorder)(nil)

func NewRecorder(store Store, rng engine.Roller) *Recorder {
	return &Recorder{store: store, rng: rng}
}

// RecordOutcome archives the match, updates player stats and applies
// experience to every participating titan.
func (r *Recorder) RecordOutcome(ctx context.Context, o service.Outcome) error {
	rec := &game.MatchRecord{
		GameID:      o.GameID,
		PlayerIDs:   append([]string(nil), o.Players...),
		WinnerID:    o.WinnerID,
		ForfeitedBy: o.ForfeitedBy,
		Reason:      o.Reason,
		Rounds:      o.Rounds,
		FinalLog:    append([]string(nil), o.FinalLog...),
		EndedAt:     o.EndedAt,
	}
	if err := r.store.SaveMatch(rec); err != nil {
		return fmt.Errorf("save match %s: %w", o.GameID, err)
	}
	if err := r.store.UpdateStatsOnGameEnd(rec, o.Usernames); err != nil {
		return fmt.Errorf("update stats for %s: %w", o.GameID, err)
	}
	if o.WinnerID == "" {
		return nil
	}

	var errs []error
	for _, pid := range o.Players {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pid == o.ForfeitedBy {
			continue
		}
		opp := opponentOf(o.Players, pid)
		if err := r.awardTitan(o, pid, opp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Recorder) awardTitan(o service.Outcome, playerID, opponentID string) error {
	played, ok := o.Titans[playerID]
	if !ok {
		return nil
	}
	t, err := r.store.GetTitan(played.ID)
	if errors.Is(err, storage.ErrNotFound) {
		c := played.Clone()
		t = &c
	} else if err != nil {
		return fmt.Errorf("load titan %s: %w", played.ID, err)
	}

	won := o.WinnerID == playerID
	xp := BattleXP(levelOf(played), levelOf(o.Titans[opponentID]), won, won && o.Reason == service.ReasonDefeat)
	levels := r.Apply(t, xp)

	if err := r.store.SaveTitan(t); err != nil {
		return fmt.Errorf("save titan %s: %w", t.ID, err)
	}
	logging.Info("titan gained experience", logging.Fields{
		constants.LogFieldGameID:  o.GameID,
		constants.LogFieldTitanID: t.ID,
		"xp":                      xp,
		"level":                   t.Level,
		"levels_gained":           levels,
	})
	return nil
}

// Apply adds xp to t, levelling up as many times as the total allows. Each
// level raises the core stats by StatIncrease. It returns the levels gained.
func (r *Recorder) Apply(t *game.Titan, xp int) int {
	if t.Level < 1 {
		t.Level = 1
	}
	t.XP += xp
	gained := 0
	for t.XP >= XPToNext(t.Level) {
		t.XP -= XPToNext(t.Level)
		t.Level++
		gained++
		r.raiseStats(&t.Stats)
	}
	return gained
}

func (r *Recorder) raiseStats(s *game.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.HP += StatIncrease(r.rng.Float64())
	s.Attack += StatIncrease(r.rng.Float64())
	s.Defense += StatIncrease(r.rng.Float64())
	s.Speed += StatIncrease(r.rng.Float64())
	s.Stamina += StatIncrease(r.rng.Float64())
}

func levelOf(t game.Titan) int {
	if t.Level < 1 {
		return 1
	}
	return t.Level
}

func opponentOf(players []string, playerID string) string {
	for _, p := range players {
		if p != playerID {
			return p
		}
	}
	return ""
}
