package storage

import (
	"errors"

	"github.com/ericogr/titan-arena/internal/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) UpsertUser(playerID, name, email string) error {
	u := game.User{PlayerID: playerID, PlayerName: name, Email: email}
	update := []string{"player_name", "updated_at"}
	if email != "" {
		update = append(update, "email")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns(update),
	}).Create(&u).Error
}

func (r *sqliteRepository) GetUser(playerID string) (*game.User, error) {
	var u game.User
	if err := r.db.Where("player_id = ?", playerID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &game.User{PlayerID: playerID}, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *sqliteRepository) GetTitan(id string) (*game.Titan, error) {
	var t game.Titan
	if err := r.db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *sqliteRepository) GetTitansByPlayer(playerID string) ([]game.Titan, error) {
	var titans []game.Titan
	if err := r.db.Where("player_id = ?", playerID).Order("created_at ASC").Find(&titans).Error; err != nil {
		return nil, err
	}
	return titans, nil
}

// SaveTitan inserts the titan or overwrites every column of an existing row.
func (r *sqliteRepository) SaveTitan(t *game.Titan) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(t).Error
}

func (r *sqliteRepository) SaveMatch(m *game.MatchRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}},
		DoNothing: true,
	}).Create(m).Error
}

func (r *sqliteRepository) UpdateStatsOnGameEnd(m *game.MatchRecord, names map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, pid := range m.PlayerIDs {
			// make sure a row exists before adding deltas
			seed := game.User{PlayerID: pid, PlayerName: names[pid]}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "player_id"}},
				DoNothing: true,
			}).Create(&seed).Error; err != nil {
				return err
			}

			deltas := map[string]interface{}{
				"games_played": gorm.Expr("games_played + ?", 1),
			}
			switch {
			case m.WinnerID == "":
			case m.WinnerID == pid:
				deltas["wins"] = gorm.Expr("wins + ?", 1)
			default:
				deltas["losses"] = gorm.Expr("losses + ?", 1)
			}
			if m.ForfeitedBy == pid {
				deltas["forfeits"] = gorm.Expr("forfeits + ?", 1)
			}
			if err := tx.Model(&game.User{}).Where("player_id = ?", pid).Updates(deltas).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sqliteRepository) GetRecentMatches(playerID string, limit int) ([]game.MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var matches []game.MatchRecord
	// player_ids is a JSON array column; match the quoted id inside it
	if err := r.db.Where("player_ids LIKE ?", "%\""+playerID+"\"%").
		Order("ended_at DESC").
		Limit(limit).
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// GetTopPlayers returns top N players ordered by Wins desc, then GamesPlayed desc
func (r *sqliteRepository) GetTopPlayers(limit int) ([]game.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []game.User
	if err := r.db.Model(&game.User{}).
		Order("wins DESC").
		Order("games_played DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
