package storage

import (
	"errors"

	"github.com/ericogr/titan-arena/internal/game"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

type Repository interface {
	// UpsertUser creates the profile on first login and refreshes the
	// display name and email afterwards.
	UpsertUser(playerID, name, email string) error
	// GetUser returns the profile, or zeroed stats for an unknown player.
	GetUser(playerID string) (*game.User, error)

	GetTitan(id string) (*game.Titan, error)
	GetTitansByPlayer(playerID string) ([]game.Titan, error)
	SaveTitan(t *game.Titan) error

	// SaveMatch archives a finished game; saving the same game twice is a no-op.
	SaveMatch(m *game.MatchRecord) error
	// UpdateStatsOnGameEnd applies one finished game to every participant's
	// aggregate stats. names maps player id to display name.
	UpdateStatsOnGameEnd(m *game.MatchRecord, names map[string]string) error
	GetRecentMatches(playerID string, limit int) ([]game.MatchRecord, error)

	// Leaderboard
	GetTopPlayers(limit int) ([]game.User, error)
}
