// Package realtime is the websocket front of the arena: it authenticates
// connections, mirrors the lobby and relays game updates to participants.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/lobby"
	"github.com/ericogr/titan-arena/internal/logging"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Games is the session manager surface the hub drives.
type Games interface {
	CreateGame(participants []game.Participant, assignment map[string]game.Titan) (*game.Game, error)
	SubmitAction(gameID, playerID string, action game.Action) (*game.Game, *game.RoundResult)
	GetGameByParticipant(playerID string) (*game.Game, bool)
}

// Roster hands out player titans.
type Roster interface {
	GetOrCreate(ctx context.Context, playerID string) (game.Titan, error)
	ForPlayer(ctx context.Context, playerID string) ([]game.Titan, error)
}

// Users records player identities.
type Users interface {
	UpsertUser(playerID, name, email string) error
}

// Identity is a player already authenticated by the HTTP layer.
type Identity struct {
	PlayerID string
	Username string
}

type Config struct {
	Games      Games
	Roster     Roster
	Users      Users
	Lobby      *lobby.Lobby
	SessionTTL time.Duration
	// CheckOrigin overrides the upgrader's origin check; nil accepts all.
	CheckOrigin func(r *http.Request) bool
}

type wsSession struct {
	userID    string
	username  string
	expiresAt time.Time
}

type Hub struct {
	games    Games
	roster   Roster
	users    Users
	lobby    *lobby.Lobby
	ttl      time.Duration
	now      func() time.Time
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	clients  map[*client]struct{}
	byUser   map[string]*client
	sessions map[string]wsSession

	// pubMu orders game publishes; published holds the last state sent per game.
	pubMu     sync.Mutex
	published map[string]progress
}

func NewHub(cfg Config) *Hub {
	check := cfg.CheckOrigin
	if check == nil {
		check = func(r *http.Request) bool { return true }
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	l := cfg.Lobby
	if l == nil {
		l = lobby.New()
	}
	return &Hub{
		games:    cfg.Games,
		roster:   cfg.Roster,
		users:    cfg.Users,
		lobby:    l,
		ttl:      ttl,
		now:      time.Now,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024, CheckOrigin: check},
		clients:  make(map[*client]struct{}),
		byUser:   make(map[string]*client),
		sessions: make(map[string]wsSession),

		published: make(map[string]progress),
	}
}

// ServeWS upgrades the request and serves the connection until it closes.
// A non-nil ident authenticates the connection straight away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, ident *Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("ws: upgrade failed", err, logging.Fields{constants.LogFieldAddr: r.RemoteAddr})
		return
	}
	c := newClient(h, conn)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logging.Info("ws: connected", logging.Fields{constants.LogFieldAddr: r.RemoteAddr})

	go c.writePump()
	if ident != nil {
		h.login(c, ident.PlayerID, ident.Username, "")
	}
	c.readPump()
}

// unregister forgets the connection. The ws session survives so the player
// can reconnect; the lobby entry only goes when no newer connection exists.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	uid := c.userID
	current := uid != "" && h.byUser[uid] == c
	if current {
		delete(h.byUser, uid)
	}
	h.mu.Unlock()

	if !current {
		logging.Info("ws: disconnected", nil)
		return
	}
	h.lobby.RemovePlayer(uid)
	logging.Info("ws: user disconnected", logging.Fields{constants.LogFieldPlayerID: uid})
	h.BroadcastLobby()
}

// bind attaches an authenticated user to c, replacing an older connection
// for the same user.
func (h *Hub) bind(c *client, userID, username string) {
	h.mu.Lock()
	old := h.byUser[userID]
	c.userID = userID
	c.username = username
	h.byUser[userID] = c
	h.mu.Unlock()
	if old != nil && old != c {
		old.sendError("signed in from another connection")
		old.close()
	}
}

func (h *Hub) userOf(c *client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.userID
}

func (h *Hub) identityOf(c *client) (string, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.userID, c.username
}

func (h *Hub) usernameOf(userID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.byUser[userID]
	if !ok {
		return "", false
	}
	return c.username, true
}

func (h *Hub) newSession(userID, username string) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.sessions[id] = wsSession{userID: userID, username: username, expiresAt: h.now().Add(h.ttl)}
	h.mu.Unlock()
	return id
}

// resumeSession returns the session and slides its expiry forward.
func (h *Hub) resumeSession(id string) (wsSession, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return wsSession{}, false
	}
	if !h.now().Before(s.expiresAt) {
		delete(h.sessions, id)
		return wsSession{}, false
	}
	s.expiresAt = h.now().Add(h.ttl)
	h.sessions[id] = s
	return s, true
}

// PruneSessions drops expired ws sessions and returns how many went. Publish
// bookkeeping of games finished longer than the session ttl goes too.
func (h *Hub) PruneSessions(now time.Time) int {
	h.pubMu.Lock()
	for id, p := range h.published {
		if p.finished && now.Sub(p.at) >= h.ttl {
			delete(h.published, id)
		}
	}
	h.pubMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, s := range h.sessions {
		if !now.Before(s.expiresAt) {
			delete(h.sessions, id)
			n++
		}
	}
	return n
}

// sendToUser delivers an already encoded message if the user is connected.
func (h *Hub) sendToUser(userID string, b []byte) {
	h.mu.RLock()
	c := h.byUser[userID]
	h.mu.RUnlock()
	if c != nil {
		c.enqueue(b)
	}
}

// BroadcastLobby sends the current lobby state to every connection.
func (h *Hub) BroadcastLobby() {
	b, err := encode(TypeLobbyUpdate, h.lobby.State())
	if err != nil {
		logging.Error("ws: failed to encode lobby update", err, nil)
		return
	}
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.enqueue(b)
	}
}

// PublishUpdate sends GameUpdate to every participant and, when a round
// resolved, the RoundComplete message. Each message is encoded once so all
// participants receive identical bytes.
func (h *Hub) PublishUpdate(g *game.Game, result *game.RoundResult) {
	if g == nil {
		return
	}
	h.pubMu.Lock()
	defer h.pubMu.Unlock()
	if !h.admit(g) {
		logging.Debug("ws: dropping stale game update", logging.Fields{constants.LogFieldGameID: g.ID, constants.LogFieldRound: g.RoundNumber})
		return
	}
	update, err := encode(TypeGameUpdate, GameUpdate{Game: g})
	if err != nil {
		logging.Error("ws: failed to encode game update", err, logging.Fields{constants.LogFieldGameID: g.ID})
		return
	}
	var complete []byte
	if result != nil {
		if complete, err = encode(TypeRoundComplete, RoundComplete{RoundResult: result}); err != nil {
			logging.Error("ws: failed to encode round result", err, logging.Fields{constants.LogFieldGameID: g.ID})
			complete = nil
		}
	}
	for _, pid := range g.Players {
		h.sendToUser(pid, update)
		if complete != nil {
			h.sendToUser(pid, complete)
		}
	}
}

// publishStart sends gameStart to every participant.
func (h *Hub) publishStart(g *game.Game) {
	titans := make([]game.Titan, 0, len(g.Players))
	for _, pid := range g.Players {
		titans = append(titans, g.Titans[pid])
	}
	b, err := encode(TypeGameStart, GameStart{Game: g, Titans: titans})
	if err != nil {
		logging.Error("ws: failed to encode game start", err, logging.Fields{constants.LogFieldGameID: g.ID})
		return
	}
	for _, pid := range g.Players {
		h.sendToUser(pid, b)
	}
}
