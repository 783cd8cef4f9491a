// Package lobby tracks connected players and the rooms they gather in
// before a game starts.
package lobby

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrPlayerNotFound = errors.New("player not in lobby")
	ErrInvalidRoom    = errors.New("room needs a name and room for at least two players")
)

type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MaxPlayers int       `json:"maxPlayers"`
	Players    []string  `json:"players"`
	CreatedAt  time.Time `json:"createdAt"`
}

// State is a point-in-time copy of the lobby.
type State struct {
	Players []Player `json:"players"`
	Rooms   []Room   `json:"rooms"`
}

type Lobby struct {
	mu      sync.Mutex
	players map[string]Player
	rooms   map[string]*Room
}

func New() *Lobby {
	return &Lobby{
		players: make(map[string]Player),
		rooms:   make(map[string]*Room),
	}
}

func (l *Lobby) AddPlayer(p Player) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.players[p.ID] = p
}

// RemovePlayer drops the player and takes them out of any room.
func (l *Lobby) RemovePlayer(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.players, playerID)
	l.leaveLocked(playerID)
}

func (l *Lobby) CreateRoom(name string, maxPlayers int) (Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || maxPlayers < 2 {
		return Room{}, ErrInvalidRoom
	}
	r := &Room{ID: uuid.NewString(), Name: name, MaxPlayers: maxPlayers, Players: []string{}, CreatedAt: time.Now()}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms[r.ID] = r
	return r.copy(), nil
}

// JoinRoom moves the player into roomID, leaving any room they were in.
// A full or unknown room leaves the player where they were.
func (l *Lobby) JoinRoom(playerID, roomID string) (Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.players[playerID]; !ok {
		return Room{}, ErrPlayerNotFound
	}
	r, ok := l.rooms[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if r.has(playerID) {
		return r.copy(), nil
	}
	if len(r.Players) >= r.MaxPlayers {
		return Room{}, ErrRoomFull
	}
	l.leaveLocked(playerID)
	r.Players = append(r.Players, playerID)
	return r.copy(), nil
}

func (l *Lobby) LeaveRoom(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leaveLocked(playerID)
}

// RoomOf returns the room the player is in, if any.
func (l *Lobby) RoomOf(playerID string) (Room, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.rooms {
		if r.has(playerID) {
			return r.copy(), true
		}
	}
	return Room{}, false
}

// State returns players sorted by username and rooms oldest first.
func (l *Lobby) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := State{
		Players: make([]Player, 0, len(l.players)),
		Rooms:   make([]Room, 0, len(l.rooms)),
	}
	for _, p := range l.players {
		st.Players = append(st.Players, p)
	}
	for _, r := range l.rooms {
		st.Rooms = append(st.Rooms, r.copy())
	}
	sort.Slice(st.Players, func(i, j int) bool {
		if st.Players[i].Username == st.Players[j].Username {
			return st.Players[i].ID < st.Players[j].ID
		}
		return st.Players[i].Username < st.Players[j].Username
	})
	sort.Slice(st.Rooms, func(i, j int) bool {
		if st.Rooms[i].CreatedAt.Equal(st.Rooms[j].CreatedAt) {
			return st.Rooms[i].ID < st.Rooms[j].ID
		}
		return st.Rooms[i].CreatedAt.Before(st.Rooms[j].CreatedAt)
	})
	return st
}

func (l *Lobby) leaveLocked(playerID string) {
	for _, r := range l.rooms {
		for i, id := range r.Players {
			if id == playerID {
				r.Players = append(r.Players[:i], r.Players[i+1:]...)
				break
			}
		}
	}
}

func (r *Room) has(playerID string) bool {
	for _, id := range r.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

func (r *Room) copy() Room {
	c := *r
	c.Players = append([]string{}, r.Players...)
	return c
}
