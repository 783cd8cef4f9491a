// Package titans owns each player's persistent titans and generates a
// starter titan on first login.
package titans

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/config"
	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/dedupe"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"

	"github.com/google/uuid"
)

// Store is the titan persistence the roster needs.
type Store interface {
	GetTitansByPlayer(playerID string) ([]game.Titan, error)
	SaveTitan(t *game.Titan) error
}

// Roster hands out titans, generating one the first time a player asks.
type Roster struct {
	store        Store
	names        []game.TitanName
	maxAbilities int
	ranges       config.StatRanges

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRoster(store Store, cfg *config.LoadedConfig, rng *rand.Rand) *Roster {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	names := cfg.TitanNames
	if len(names) == 0 {
		names = game.DefaultTitanNames
	}
	return &Roster{
		store:        store,
		names:        names,
		maxAbilities: cfg.MaxAbilities,
		ranges:       cfg.StatRanges,
		rng:          rng,
	}
}

// ForPlayer lists the player's titans, oldest first.
func (r *Roster) ForPlayer(ctx context.Context, playerID string) ([]game.Titan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.GetTitansByPlayer(playerID)
}

// GetOrCreate returns the player's first titan, generating and storing one
// when the player has none. Concurrent calls for the same player share one
// generation.
func (r *Roster) GetOrCreate(ctx context.Context, playerID string) (game.Titan, error) {
	ch := dedupe.TitanGroup.DoChan(dedupe.TitanKey(playerID), func() (interface{}, error) {
		existing, err := r.store.GetTitansByPlayer(playerID)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing[0], nil
		}
		t := r.Generate(playerID)
		if err := r.store.SaveTitan(&t); err != nil {
			return nil, err
		}
		logging.Info("starter titan generated", logging.Fields{
			constants.LogFieldPlayerID: playerID,
			constants.LogFieldTitanID:  t.ID,
			constants.LogFieldName:     t.Name,
			"abilities":                t.Abilities,
		})
		return t, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logging.Error("failed to load starter titan", res.Err, logging.Fields{constants.LogFieldPlayerID: playerID})
			return game.Titan{}, res.Err
		}
		t, ok := res.Val.(game.Titan)
		if !ok {
			return game.Titan{}, fmt.Errorf("unexpected titan result type %T", res.Val)
		}
		// callers sharing a result must not share the abilities slice
		return t.Clone(), nil
	case <-ctx.Done():
		return game.Titan{}, ctx.Err()
	}
}

// Generate builds a new level 1 titan for playerID without storing it.
func (r *Roster) Generate(playerID string) game.Titan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return game.Titan{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Name:      string(r.names[r.rng.Intn(len(r.names))]),
		Stats:     r.rollStats(),
		Abilities: r.pickAbilities(),
		Level:     1,
	}
}

func (r *Roster) roll(sr config.StatRange) int {
	return sr.Min + r.rng.Intn(sr.Max-sr.Min+1)
}

func (r *Roster) rollStats() game.Stats {
	return game.Stats{
		HP:             r.roll(r.ranges.HP),
		Attack:         r.roll(r.ranges.Attack),
		Defense:        r.roll(r.ranges.Defense),
		Speed:          r.roll(r.ranges.Speed),
		Stamina:        r.roll(r.ranges.Stamina),
		Accuracy:       r.roll(r.ranges.Accuracy),
		Evasion:        r.roll(r.ranges.Evasion),
		CriticalChance: r.roll(r.ranges.CriticalChance),
	}
}

// pickAbilities draws up to maxAbilities distinct catalog ids. The count
// itself is random so some titans start with fewer.
func (r *Roster) pickAbilities() []string {
	ids := abilities.IDs()
	n := r.maxAbilities
	if n > len(ids) {
		n = len(ids)
	}
	if n <= 0 {
		return []string{}
	}
	count := 1 + r.rng.Intn(n)
	r.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return append([]string(nil), ids[:count]...)
}
