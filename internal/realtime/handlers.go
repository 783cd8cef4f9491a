package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/keys"
	"github.com/ericogr/titan-arena/internal/lobby"
	"github.com/ericogr/titan-arena/internal/logging"
)

const (
	maxUsernameLen = 32
	handlerTimeout = 10 * time.Second
)

func (h *Hub) dispatch(c *client, env Envelope) {
	switch env.Type {
	case TypeAuthRequest:
		h.handleAuth(c, env.Payload)
	case TypeReconnectRequest:
		h.handleReconnect(c, env.Payload)
	case TypeLobbyInfoRequest:
		c.sendMessage(TypeLobbyUpdate, h.lobby.State())
	case TypeCreateRoomRequest:
		h.authed(c, func(uid string) { h.handleCreateRoom(c, uid, env.Payload) })
	case TypeJoinRoomRequest:
		h.authed(c, func(uid string) { h.handleJoinRoom(c, uid, env.Payload) })
	case TypeLeaveRoomRequest:
		h.authed(c, func(uid string) {
			h.lobby.LeaveRoom(uid)
			h.BroadcastLobby()
		})
	case TypeCreateGameRequest:
		h.authed(c, func(uid string) { h.handleCreateGame(c, uid, env.Payload) })
	case TypePlayerAction:
		h.authed(c, func(uid string) { h.handlePlayerAction(c, uid, env.Payload) })
	default:
		logging.Info("ws: unhandled event type", logging.Fields{constants.LogFieldEvent: env.Type})
		c.sendError("unknown message type: " + env.Type)
	}
}

func (h *Hub) authed(c *client, fn func(userID string)) {
	uid := h.userOf(c)
	if uid == "" {
		c.sendError(constants.ErrAuthRequired)
		return
	}
	fn(uid)
}

func decode(c *client, raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.sendError(constants.ErrInvalidRequest)
		return false
	}
	return true
}

func (h *Hub) handleAuth(c *client, raw json.RawMessage) {
	var req AuthRequest
	if !decode(c, raw, &req) {
		return
	}
	name := strings.TrimSpace(req.Username)
	if name == "" {
		c.sendError(constants.ErrUsernameRequired)
		return
	}
	if utf8.RuneCountInString(name) > maxUsernameLen {
		c.sendError(constants.ErrUsernameTooLong)
		return
	}
	h.login(c, keys.PlayerIDForUsername(name), name, "")
}

func (h *Hub) handleReconnect(c *client, raw json.RawMessage) {
	var req ReconnectRequest
	if !decode(c, raw, &req) {
		return
	}
	s, ok := h.resumeSession(req.SessionID)
	if !ok {
		logging.Info("ws: invalid session id on reconnect", nil)
		c.sendMessage(TypeReconnectFailed, ReconnectFailed{Reason: "session_not_found"})
		return
	}
	h.login(c, s.userID, s.username, req.SessionID)
}

// login binds the connection to a player, makes sure they own a titan and
// replays any game they are still part of. An empty sessionID issues a new
// ws session.
func (h *Hub) login(c *client, userID, username, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if h.users != nil {
		if err := h.users.UpsertUser(userID, username, ""); err != nil {
			logging.Error("ws: failed to upsert user", err, logging.Fields{constants.LogFieldPlayerID: userID})
		}
	}
	if _, err := h.roster.GetOrCreate(ctx, userID); err != nil {
		c.sendError(constants.ErrFailedFetchTitans)
		return
	}
	titans, err := h.roster.ForPlayer(ctx, userID)
	if err != nil {
		c.sendError(constants.ErrFailedFetchTitans)
		return
	}

	if sessionID == "" {
		sessionID = h.newSession(userID, username)
	}
	h.bind(c, userID, username)
	h.lobby.AddPlayer(lobby.Player{ID: userID, Username: username})

	c.sendMessage(TypeAuthResponse, AuthResponse{SessionID: sessionID, UserID: userID, Username: username, Titans: titans})
	logging.Info("ws: user authenticated", logging.Fields{constants.LogFieldPlayerID: userID, constants.LogFieldName: username})
	h.BroadcastLobby()

	if g, ok := h.games.GetGameByParticipant(userID); ok && g.State != game.StateFinished {
		titans := make([]game.Titan, 0, len(g.Players))
		for _, pid := range g.Players {
			titans = append(titans, g.Titans[pid])
		}
		c.sendMessage(TypeGameStart, GameStart{Game: g, Titans: titans})
	}
}

func (h *Hub) handleCreateRoom(c *client, userID string, raw json.RawMessage) {
	var req CreateRoomRequest
	if !decode(c, raw, &req) {
		return
	}
	room, err := h.lobby.CreateRoom(req.Name, req.MaxPlayers)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	logging.Info("room created", logging.Fields{constants.LogFieldRoomID: room.ID, constants.LogFieldPlayerID: userID})
	h.BroadcastLobby()
}

func (h *Hub) handleJoinRoom(c *client, userID string, raw json.RawMessage) {
	var req JoinRoomRequest
	if !decode(c, raw, &req) {
		return
	}
	if _, err := h.lobby.JoinRoom(userID, req.RoomID); err != nil {
		c.sendError(err.Error())
		return
	}
	h.BroadcastLobby()
}

// handleCreateGame starts a game between connected players. The requester
// must be one of them.
func (h *Hub) handleCreateGame(c *client, userID string, raw json.RawMessage) {
	var req CreateGameRequest
	if !decode(c, raw, &req) {
		return
	}
	participants := make([]game.Participant, 0, len(req.PlayerIDs))
	includesSelf := false
	for _, pid := range req.PlayerIDs {
		name, ok := h.usernameOf(pid)
		if !ok {
			c.sendError("player is not connected: " + pid)
			return
		}
		if pid == userID {
			includesSelf = true
		}
		participants = append(participants, game.Participant{ID: pid, Username: name})
	}
	if !includesSelf {
		c.sendError(constants.ErrPlayerNotInThisGame)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	assignment := make(map[string]game.Titan, len(participants))
	for _, p := range participants {
		t, err := h.roster.GetOrCreate(ctx, p.ID)
		if err != nil {
			c.sendError(constants.ErrFailedFetchTitans)
			return
		}
		assignment[p.ID] = t
	}

	g, err := h.games.CreateGame(participants, assignment)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	for _, p := range participants {
		h.lobby.LeaveRoom(p.ID)
	}
	h.publishStart(g)
	h.BroadcastLobby()
}

func (h *Hub) handlePlayerAction(c *client, userID string, raw json.RawMessage) {
	var req PlayerAction
	if !decode(c, raw, &req) {
		return
	}
	g, result := h.games.SubmitAction(req.GameID, userID, req.Action)
	if g == nil {
		c.sendError(constants.ErrGameNotFound)
		return
	}
	if !g.IsParticipant(userID) {
		c.sendError(constants.ErrPlayerNotInThisGame)
		return
	}
	h.PublishUpdate(g, result)
}
