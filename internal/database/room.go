package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/apperr"
	"github.com/thereayou/roomly/internal/models"
	"gorm.io/gorm"
)

// InsertRoom writes a room together with its creator membership in one
// transaction: neither is ever visible without the other. A collision on
// the room code unique index comes back as apperr.ErrCodeTaken so the
// caller can retry with a fresh code.
func (d *Database) InsertRoom(ctx context.Context, room *models.Room, creator *models.Membership) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrCodeTaken
			}
			return err
		}
		creator.RoomID = room.ID
		return tx.Create(creator).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrCodeTaken) {
			return err
		}
		return apperr.Internalf(err, "insert room")
	}
	return nil
}

func (d *Database) RoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := d.db.WithContext(ctx).Preload("Creator").First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Room not found")
		}
		return nil, apperr.Internalf(err, "load room")
	}
	return &room, nil
}

func (d *Database) RoomByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := d.db.WithContext(ctx).Preload("Creator").Where("code = ?", code).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Room not found")
		}
		return nil, apperr.Internalf(err, "load room by code")
	}
	return &room, nil
}

// DeleteRoom removes the room and cascades to its messages and
// memberships inside one transaction.
func (d *Database) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Message{}, "room_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Membership{}, "room_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&room).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Room not found")
		}
		return apperr.Internalf(err, "delete room")
	}
	return nil
}

// SearchRooms matches the query case-insensitively against room name,
// room code and creator username. Ordered by room id descending so pages
// are stable.
func (d *Database) SearchRooms(ctx context.Context, query string, page, size int) ([]models.Room, int64, error) {
	pattern := "%" + query + "%"
	matched := func() *gorm.DB {
		return d.db.WithContext(ctx).
			Model(&models.Room{}).
			Joins("JOIN users ON users.id = rooms.creator_id").
			Where("rooms.name ILIKE ? OR rooms.code ILIKE ? OR users.username ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := matched().Count(&total).Error; err != nil {
		return nil, 0, apperr.Internalf(err, "count rooms")
	}

	var rooms []models.Room
	err := matched().
		Order("rooms.id DESC").
		Offset(page * size).
		Limit(size).
		Preload("Creator").
		Find(&rooms).Error
	if err != nil {
		return nil, 0, apperr.Internalf(err, "search rooms")
	}
	return rooms, total, nil
}

func (d *Database) RoomsByCreator(ctx context.Context, creatorID uuid.UUID, page, size int) ([]models.Room, int64, error) {
	owned := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&models.Room{}).Where("creator_id = ?", creatorID)
	}

	var total int64
	if err := owned().Count(&total).Error; err != nil {
		return nil, 0, apperr.Internalf(err, "count own rooms")
	}

	var rooms []models.Room
	err := owned().
		Order("id DESC").
		Offset(page * size).
		Limit(size).
		Preload("Creator").
		Find(&rooms).Error
	if err != nil {
		return nil, 0, apperr.Internalf(err, "load own rooms")
	}
	return rooms, total, nil
}
