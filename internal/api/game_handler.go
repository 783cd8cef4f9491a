package api

import (
	"context"

	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/storage"
)

// Games is the live-game surface the HTTP handlers use.
type Games interface {
	GetGame(gameID string) (*game.Game, bool)
	GetGameByParticipant(playerID string) (*game.Game, bool)
	SubmitAction(gameID, playerID string, action game.Action) (*game.Game, *game.RoundResult)
	Forfeit(gameID, playerID string) (*game.Game, error)
}

// Roster hands out player titans.
type Roster interface {
	GetOrCreate(ctx context.Context, playerID string) (game.Titan, error)
	ForPlayer(ctx context.Context, playerID string) ([]game.Titan, error)
}

// Publisher pushes game changes to connected clients.
type Publisher interface {
	PublishUpdate(g *game.Game, result *game.RoundResult)
}

// GameHandler groups all game-related HTTP handlers.
type GameHandler struct {
	repo   storage.Repository
	games  Games
	roster Roster
	pub    Publisher
}

// NewGameHandler creates a new GameHandler. pub may be nil when no
// realtime front is running.
func NewGameHandler(repo storage.Repository, games Games, roster Roster, pub Publisher) *GameHandler {
	return &GameHandler{repo: repo, games: games, roster: roster, pub: pub}
}

func (h *GameHandler) publish(g *game.Game, result *game.RoundResult) {
	if h.pub != nil && g != nil {
		h.pub.PublishUpdate(g, result)
	}
}
