package database

import (
	"errors"

	"github.com/thereayou/roomly/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database is the GORM-backed implementation of the room, membership,
// message and user stores.
type Database struct {
	db *gorm.DB
}

// Connect opens the Postgres connection and migrates the schema.
// TranslateError is required: the room code insert-or-retry loop relies
// on unique violations surfacing as gorm.ErrDuplicatedKey.
func Connect(dsn string) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Membership{},
		&models.Message{},
	); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}
