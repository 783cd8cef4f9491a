package storage

import (
	"github.com/ericogr/titan-arena/internal/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenAndMigrate opens the sqlite database at dataSourceName and keeps the
// schema current via AutoMigrate. Only titans, player profiles and finished
// match records are stored; live games stay in memory.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&game.User{}, &game.Titan{}, &game.MatchRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}
