package game

import (
	"time"

	"gorm.io/gorm"
)

// Stats is the fixed stat block of a titan. HP is both the maximum and the
// starting hit points of every game the titan enters.
type Stats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	Speed          int `json:"speed"`
	Stamina        int `json:"stamina"`
	Accuracy       int `json:"accuracy"`
	Evasion        int `json:"evasion"`
	CriticalChance int `json:"criticalChance"`
}

// Titan is a player's persistent combatant. Abilities holds catalog ids in
// the order they were granted.
type Titan struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	PlayerID  string    `json:"playerId" gorm:"index;size:64"`
	Name      string    `json:"name"`
	Stats     Stats     `json:"stats" gorm:"embedded;embeddedPrefix:stat_"`
	Abilities []string  `json:"abilities" gorm:"serializer:json"`
	Level     int       `json:"level"`
	XP        int       `json:"xp"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Titan) TableName() string { return "titans" }

// Clone returns a copy that shares no slices with t.
func (t Titan) Clone() Titan {
	c := t
	if t.Abilities != nil {
		c.Abilities = append([]string(nil), t.Abilities...)
	}
	return c
}

// HasAbility reports whether id is one of the titan's granted abilities.
func (t Titan) HasAbility(id string) bool {
	for _, a := range t.Abilities {
		if a == id {
			return true
		}
	}
	return false
}

// BeforeSave keeps the level at 1 or above for rows written before the
// progression columns existed.
func (t *Titan) BeforeSave(tx *gorm.DB) (err error) {
	if t.Level < 1 {
		t.Level = 1
	}
	return nil
}

// User stores unique player identity and aggregate stats.
type User struct {
	gorm.Model
	PlayerID    string `json:"playerId" gorm:"uniqueIndex;size:64"`
	PlayerName  string `json:"playerName"`
	Email       string `json:"email,omitempty" gorm:"index"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Forfeits    int    `json:"forfeits"`
}

// Unify global users table name as "player_profiles"
func (User) TableName() string { return "player_profiles" }

// MatchRecord is the archived outcome of a finished game.
type MatchRecord struct {
	gorm.Model
	GameID      string    `json:"gameId" gorm:"uniqueIndex;size:64"`
	PlayerIDs   []string  `json:"playerIds" gorm:"serializer:json"`
	WinnerID    string    `json:"winnerId"`
	ForfeitedBy string    `json:"forfeitedBy,omitempty"`
	Reason      string    `json:"reason"`
	Rounds      int       `json:"rounds"`
	FinalLog    []string  `json:"finalLog" gorm:"serializer:json"`
	EndedAt     time.Time `json:"endedAt"`
}

func (MatchRecord) TableName() string { return "match_records" }
