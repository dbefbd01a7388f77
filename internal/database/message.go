package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/apperr"
	"github.com/thereayou/roomly/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) InsertMessage(ctx context.Context, message *models.Message) error {
	if err := d.db.WithContext(ctx).Create(message).Error; err != nil {
		return apperr.Internalf(err, "insert message")
	}
	return nil
}

func (d *Database) MessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := d.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Message not found")
		}
		return nil, apperr.Internalf(err, "load message")
	}
	return &message, nil
}

// MarkSeen adds userID to the message's seen-by set. The row is locked
// for the read-modify-write so concurrent acknowledgements from
// different users union instead of overwriting each other. Re-marking by
// the same user is a no-op.
func (d *Database) MarkSeen(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&message, "id = ?", messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "Message not found")
			}
			return err
		}
		if !message.AddSeen(userID) {
			return nil
		}
		return tx.Model(&message).Update("seen_by", message.SeenBy).Error
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Internalf(err, "mark seen")
	}
	return &message, nil
}

func (d *Database) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	res := d.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Internalf(res.Error, "delete message")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Message not found")
	}
	return nil
}

// MessagesByRoom pages the room history newest first and reports the
// room's total message count.
func (d *Database) MessagesByRoom(ctx context.Context, roomID uuid.UUID, page, size int) ([]models.Message, int64, error) {
	inRoom := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&models.Message{}).Where("room_id = ?", roomID)
	}

	var total int64
	if err := inRoom().Count(&total).Error; err != nil {
		return nil, 0, apperr.Internalf(err, "count messages")
	}

	var messages []models.Message
	err := inRoom().
		Order("created_at DESC, id DESC").
		Offset(page * size).
		Limit(size).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, 0, apperr.Internalf(err, "load messages")
	}
	return messages, total, nil
}
