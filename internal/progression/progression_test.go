package progression

import (
	"context"
	"testing"
	"time"

	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/service"
	"github.com/ericogr/titan-arena/internal/storage"
)

type constRoller float64

func (c constRoller) Float64() float64 { return float64(c) }

type mockStore struct {
	titans  map[string]game.Titan
	matches []game.MatchRecord
	stats   int
}

func newMockStore() *mockStore { return &mockStore{titans: map[string]game.Titan{}} }

func (m *mockStore) GetTitan(id string) (*game.Titan, error) {
	t, ok := m.titans[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := t.Clone()
	return &c, nil
}
func (m *mockStore) SaveTitan(t *game.Titan) error { m.titans[t.ID] = t.Clone(); return nil }
func (m *mockStore) SaveMatch(r *game.MatchRecord) error {
	m.matches = append(m.matches, *r)
	return nil
}
func (m *mockStore) UpdateStatsOnGameEnd(r *game.MatchRecord, names map[string]string) error {
	m.stats++
	return nil
}

func TestXPToNext(t *testing.T) {
	// floating point puts level 2 one short of 115
	cases := map[int]int{1: 100, 2: 114, 3: 132, 5: 174}
	for level, want := range cases {
		if got := XPToNext(level); got != want {
			t.Fatalf("XPToNext(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestBattleXP(t *testing.T) {
	if got := BattleXP(1, 1, true, true); got != 55 {
		t.Fatalf("expected 55 for a defeat win at equal level, got %d", got)
	}
	if got := BattleXP(1, 1, true, false); got != 50 {
		t.Fatalf("expected 50 for a plain win, got %d", got)
	}
	if got := BattleXP(1, 1, false, false); got != 20 {
		t.Fatalf("expected 20 for a loss, got %d", got)
	}
	if got := BattleXP(1, 30, true, false); got != 100 {
		t.Fatalf("expected the multiplier to cap at 2, got %d", got)
	}
	if got := BattleXP(30, 1, false, false); got != 10 {
		t.Fatalf("expected the multiplier to floor at 0.5, got %d", got)
	}
}

func TestStatIncreaseThresholds(t *testing.T) {
	cases := []struct {
		r    float64
		want int
	}{{0, 0}, {0.09, 0}, {0.1, 1}, {0.39, 1}, {0.4, 2}, {0.79, 2}, {0.8, 3}, {0.99, 3}}
	for _, c := range cases {
		if got := StatIncrease(c.r); got != c.want {
			t.Fatalf("StatIncrease(%v) = %d, want %d", c.r, got, c.want)
		}
	}
}

func TestApply_LevelsUpAndRaisesStats(t *testing.T) {
	r := NewRecorder(newMockStore(), constRoller(0.5))
	ti := &game.Titan{ID: "t1", Level: 1, XP: 90, Stats: game.Stats{HP: 10, Attack: 5, Defense: 5, Speed: 5, Stamina: 5, Accuracy: 7}}

	gained := r.Apply(ti, 130)

	// 220 xp: 100 to reach level 2, 114 to reach level 3, 6 left over
	if gained != 2 || ti.Level != 3 || ti.XP != 6 {
		t.Fatalf("expected level 3 with 6 xp, got level=%d xp=%d gained=%d", ti.Level, ti.XP, gained)
	}
	if ti.Stats.HP != 14 || ti.Stats.Attack != 9 || ti.Stats.Stamina != 9 {
		t.Fatalf("expected +2 per level on core stats, got %+v", ti.Stats)
	}
	if ti.Stats.Accuracy != 7 {
		t.Fatalf("accuracy must not change on level up, got %d", ti.Stats.Accuracy)
	}
}

func outcome(reason, winner, forfeitedBy string) service.Outcome {
	return service.Outcome{
		GameID:    "g1",
		Players:   []string{"p1", "p2"},
		Usernames: map[string]string{"p1": "alice", "p2": "bob"},
		Titans: map[string]game.Titan{
			"p1": {ID: "t1", PlayerID: "p1", Level: 1},
			"p2": {ID: "t2", PlayerID: "p2", Level: 1},
		},
		WinnerID:    winner,
		ForfeitedBy: forfeitedBy,
		Reason:      reason,
		Rounds:      4,
		FinalLog:    []string{"done"},
		EndedAt:     time.Unix(100, 0),
	}
}

func TestRecordOutcome_Defeat(t *testing.T) {
	store := newMockStore()
	store.titans["t1"] = game.Titan{ID: "t1", PlayerID: "p1", Level: 1, XP: 10}
	r := NewRecorder(store, constRoller(0))

	if err := r.RecordOutcome(context.Background(), outcome(service.ReasonDefeat, "p1", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.matches) != 1 || store.matches[0].Rounds != 4 || store.stats != 1 {
		t.Fatalf("expected match archived and stats updated, got %+v stats=%d", store.matches, store.stats)
	}
	if got := store.titans["t1"].XP; got != 65 {
		t.Fatalf("expected winner at 10+55 xp, got %d", got)
	}
	// the loser's titan was never stored, so the played copy is saved
	if got := store.titans["t2"].XP; got != 20 {
		t.Fatalf("expected loser at 20 xp, got %d", got)
	}
}

func TestRecordOutcome_ForfeitAndInactivity(t *testing.T) {
	store := newMockStore()
	r := NewRecorder(store, constRoller(0))

	if err := r.RecordOutcome(context.Background(), outcome(service.ReasonForfeit, "p2", "p1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.titans["t1"]; ok {
		t.Fatalf("forfeiting player must not earn xp")
	}
	if got := store.titans["t2"].XP; got != 50 {
		t.Fatalf("expected a plain win without the defeat bonus, got %d", got)
	}

	store = newMockStore()
	r = NewRecorder(store, constRoller(0))
	if err := r.RecordOutcome(context.Background(), outcome(service.ReasonInactivity, "", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.titans) != 0 {
		t.Fatalf("no xp on inactivity, got %+v", store.titans)
	}
	if len(store.matches) != 1 || store.stats != 1 {
		t.Fatalf("inactive matches are still archived")
	}
}
