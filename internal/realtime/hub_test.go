package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ericogr/titan-arena/internal/engine"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/service"

	"github.com/gorilla/websocket"
)

type constRoller float64

func (c constRoller) Float64() float64 { return float64(c) }

type mockRoster struct {
	mu     sync.Mutex
	titans map[string]game.Titan
}

func (m *mockRoster) GetOrCreate(ctx context.Context, playerID string) (game.Titan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.titans[playerID]; ok {
		return t, nil
	}
	t := game.Titan{
		ID:       "titan-" + playerID,
		PlayerID: playerID,
		Name:     "Atlas",
		Stats:    game.Stats{HP: 30, Attack: 10, Accuracy: 10, Speed: 5},
		Level:    1,
	}
	m.titans[playerID] = t
	return t, nil
}

func (m *mockRoster) ForPlayer(ctx context.Context, playerID string) ([]game.Titan, error) {
	t, err := m.GetOrCreate(ctx, playerID)
	return []game.Titan{t}, err
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	mgr := service.NewManager(service.Options{NewRoller: func() engine.Roller { return constRoller(0) }})
	hub := NewHub(Config{Games: mgr, Roster: &mockRoster{titans: map[string]game.Titan{}}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, nil)
	}))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := conn.WriteJSON(Envelope{Type: msgType, Payload: raw}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// readUntil skips messages until one of msgType arrives and returns its raw
// bytes along with the decoded envelope.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) ([]byte, Envelope) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad message %s: %v", data, err)
		}
		if env.Type == msgType {
			return data, env
		}
	}
}

func authenticate(t *testing.T, conn *websocket.Conn, username string) AuthResponse {
	t.Helper()
	send(t, conn, TypeAuthRequest, AuthRequest{Username: username})
	_, env := readUntil(t, conn, TypeAuthResponse)
	var resp AuthResponse
	if err := json.Unmarshal(env.Payload, &resp); err != nil {
		t.Fatalf("bad auth response: %v", err)
	}
	return resp
}

func TestHub_RequiresAuthentication(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, TypeCreateRoomRequest, CreateRoomRequest{Name: "room", MaxPlayers: 2})
	_, env := readUntil(t, conn, TypeError)
	if !strings.Contains(string(env.Payload), "Authentication required") {
		t.Fatalf("expected auth error, got %s", env.Payload)
	}
}

func TestHub_AuthAndReconnect(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	resp := authenticate(t, conn, "alice")
	if resp.SessionID == "" || resp.UserID == "" || len(resp.Titans) != 1 {
		t.Fatalf("unexpected auth response: %+v", resp)
	}

	again := dial(t, srv)
	send(t, again, TypeReconnectRequest, ReconnectRequest{SessionID: resp.SessionID})
	_, env := readUntil(t, again, TypeAuthResponse)
	var resumed AuthResponse
	_ = json.Unmarshal(env.Payload, &resumed)
	if resumed.UserID != resp.UserID || resumed.SessionID != resp.SessionID {
		t.Fatalf("expected the same identity after reconnect, got %+v", resumed)
	}

	bad := dial(t, srv)
	send(t, bad, TypeReconnectRequest, ReconnectRequest{SessionID: "nope"})
	readUntil(t, bad, TypeReconnectFailed)
}

func TestHub_LobbyRooms(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	authenticate(t, conn, "alice")

	send(t, conn, TypeCreateRoomRequest, CreateRoomRequest{Name: "arena", MaxPlayers: 2})
	var st LobbyUpdate
	for len(st.Rooms) == 0 {
		_, env := readUntil(t, conn, TypeLobbyUpdate)
		st = LobbyUpdate{}
		_ = json.Unmarshal(env.Payload, &st)
	}
	if st.Rooms[0].Name != "arena" || len(st.Players) != 1 {
		t.Fatalf("unexpected lobby state: %+v", st)
	}

	send(t, conn, TypeJoinRoomRequest, JoinRoomRequest{RoomID: st.Rooms[0].ID})
	for len(st.Rooms[0].Players) == 0 {
		_, env := readUntil(t, conn, TypeLobbyUpdate)
		st = LobbyUpdate{}
		_ = json.Unmarshal(env.Payload, &st)
	}
	if st.Rooms[0].Players[0] != st.Players[0].ID {
		t.Fatalf("expected the player in the room, got %+v", st.Rooms[0])
	}
}

func TestHub_RoundCompleteIsIdenticalForBothPlayers(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)
	a := authenticate(t, alice, "alice")
	b := authenticate(t, bob, "bob")

	send(t, alice, TypeCreateGameRequest, CreateGameRequest{PlayerIDs: []string{a.UserID, b.UserID}})
	_, env := readUntil(t, alice, TypeGameStart)
	readUntil(t, bob, TypeGameStart)
	var start GameStart
	if err := json.Unmarshal(env.Payload, &start); err != nil {
		t.Fatalf("bad game start: %v", err)
	}
	if start.Game.State != game.StateBattle || len(start.Titans) != 2 {
		t.Fatalf("unexpected game start: %+v", start)
	}

	attack := game.Action{Kind: game.ActionAttack}
	send(t, alice, TypePlayerAction, PlayerAction{GameID: start.Game.ID, Action: attack})
	send(t, bob, TypePlayerAction, PlayerAction{GameID: start.Game.ID, Action: attack})

	fromAlice, env := readUntil(t, alice, TypeRoundComplete)
	fromBob, _ := readUntil(t, bob, TypeRoundComplete)
	if !bytes.Equal(fromAlice, fromBob) {
		t.Fatalf("participants received different round results:\n%s\n%s", fromAlice, fromBob)
	}
	var rc RoundComplete
	if err := json.Unmarshal(env.Payload, &rc); err != nil {
		t.Fatalf("bad round complete: %v", err)
	}
	if rc.RoundResult.RoundNumber != 1 || len(rc.RoundResult.RoundSequence) != 2 {
		t.Fatalf("unexpected round result: %+v", rc.RoundResult)
	}
}

func TestHub_PruneSessions(t *testing.T) {
	h := NewHub(Config{SessionTTL: time.Minute})
	id := h.newSession("p1", "alice")
	if _, ok := h.resumeSession(id); !ok {
		t.Fatalf("expected a fresh session to resume")
	}
	if n := h.PruneSessions(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected one session pruned, got %d", n)
	}
	if _, ok := h.resumeSession(id); ok {
		t.Fatalf("pruned session must not resume")
	}
}

func snapshot(round int, locked map[string]bool, state game.GameState) *game.Game {
	return &game.Game{ID: "g1", Players: []string{"p1", "p2"}, RoundNumber: round, State: state, Meta: game.Meta{LockedPlayers: locked}}
}

func TestHub_DropsStaleGameUpdates(t *testing.T) {
	h := NewHub(Config{SessionTTL: time.Minute})
	none := map[string]bool{"p1": false, "p2": false}
	one := map[string]bool{"p1": true, "p2": false}

	if !h.admit(snapshot(1, one, game.StateBattle)) {
		t.Fatalf("first update must be admitted")
	}
	if !h.admit(snapshot(2, none, game.StateBattle)) {
		t.Fatalf("resolved round must be admitted")
	}
	// the first submitter's snapshot arriving after resolution
	if h.admit(snapshot(1, one, game.StateBattle)) {
		t.Fatalf("pre-resolution snapshot must be dropped after the round resolved")
	}
	if !h.admit(snapshot(2, one, game.StateBattle)) {
		t.Fatalf("a new lock in the current round must be admitted")
	}
	if h.admit(snapshot(2, none, game.StateBattle)) {
		t.Fatalf("fewer locks in the same round is older state")
	}
	if !h.admit(snapshot(3, none, game.StateFinished)) {
		t.Fatalf("finished state must be admitted")
	}
	if h.admit(snapshot(3, one, game.StateBattle)) {
		t.Fatalf("nothing may follow a finished state")
	}

	if n := h.PruneSessions(time.Now().Add(2 * time.Minute)); n != 0 {
		t.Fatalf("no sessions to prune, got %d", n)
	}
	if _, ok := h.published["g1"]; ok {
		t.Fatalf("finished game bookkeeping must be pruned after the ttl")
	}
}

func TestHub_UsernameLengthCountsRunes(t *testing.T) {
	srv, _ := newTestServer(t)

	name := strings.Repeat("é", 20)
	resp := authenticate(t, dial(t, srv), name)
	if resp.Username != name {
		t.Fatalf("expected %q to be accepted, got %+v", name, resp)
	}

	conn := dial(t, srv)
	send(t, conn, TypeAuthRequest, AuthRequest{Username: strings.Repeat("é", maxUsernameLen+1)})
	_, env := readUntil(t, conn, TypeError)
	if !strings.Contains(string(env.Payload), "exceeds") {
		t.Fatalf("expected too-long error, got %s", env.Payload)
	}
}
