package realtime

import (
	"encoding/json"

	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/lobby"
)

// Incoming message types.
const (
	TypeAuthRequest       = "authRequest"
	TypeReconnectRequest  = "reconnectRequest"
	TypeLobbyInfoRequest  = "lobbyInfoRequest"
	TypeCreateRoomRequest = "createRoomRequest"
	TypeJoinRoomRequest   = "joinRoomRequest"
	TypeLeaveRoomRequest  = "leaveRoomRequest"
	TypeCreateGameRequest = "createGameRequest"
	TypePlayerAction      = "playerAction"
)

// Outgoing message types.
const (
	TypeAuthResponse    = "authResponse"
	TypeReconnectFailed = "reconnectFailed"
	TypeLobbyUpdate     = "lobbyUpdate"
	TypeGameStart       = "gameStart"
	TypeGameUpdate      = "GameUpdate"
	TypeRoundComplete   = "RoundComplete"
	TypeError           = "error"
)

// Envelope is the wire shape of every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outgoing struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type AuthRequest struct {
	Username string `json:"username"`
}

type ReconnectRequest struct {
	SessionID string `json:"sessionId"`
}

type CreateRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
}

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

type CreateGameRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

type PlayerAction struct {
	GameID string      `json:"gameId"`
	Action game.Action `json:"action"`
}

type AuthResponse struct {
	SessionID string       `json:"sessionId"`
	UserID    string       `json:"userId"`
	Username  string       `json:"username"`
	Titans    []game.Titan `json:"titans"`
}

type ReconnectFailed struct {
	Reason string `json:"reason"`
}

type GameStart struct {
	Game   *game.Game   `json:"game"`
	Titans []game.Titan `json:"titans"`
}

type GameUpdate struct {
	Game *game.Game `json:"game"`
}

type RoundComplete struct {
	RoundResult *game.RoundResult `json:"roundResult"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type LobbyUpdate = lobby.State

func encode(msgType string, payload interface{}) ([]byte, error) {
	return json.Marshal(outgoing{Type: msgType, Payload: payload})
}
