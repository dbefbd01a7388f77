package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/apperr"
	"github.com/thereayou/roomly/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddMember inserts a membership row. The room row is locked for the
// duration of the transaction so concurrent joins racing the capacity
// boundary serialize: the duplicate and RoomFull checks and the insert
// commit as one unit.
func (d *Database) AddMember(ctx context.Context, roomID, userID uuid.UUID, role models.MemberRole) (*models.Membership, error) {
	member := &models.Membership{
		RoomID:   roomID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "Room not found")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Membership{}).
			Where("room_id = ? AND user_id = ?", roomID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.New(apperr.AlreadyMember, "User already in room")
		}

		var count int64
		if err := tx.Model(&models.Membership{}).
			Where("room_id = ?", roomID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(room.MaxMembers) {
			return apperr.New(apperr.RoomFull, "Room is full")
		}

		return tx.Create(member).Error
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Internalf(err, "add member")
	}
	return member, nil
}

func (d *Database) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	res := d.db.WithContext(ctx).
		Delete(&models.Membership{}, "room_id = ? AND user_id = ?", roomID, userID)
	if res.Error != nil {
		return apperr.Internalf(res.Error, "remove member")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotAMember, "User is not a member of the room")
	}
	return nil
}

func (d *Database) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Membership{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internalf(err, "check membership")
	}
	return count > 0, nil
}

func (d *Database) MembersByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Membership, error) {
	var members []models.Membership
	err := d.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Preload("User").
		Find(&members).Error
	if err != nil {
		return nil, apperr.Internalf(err, "list room members")
	}
	return members, nil
}

func (d *Database) MembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	var members []models.Membership
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Preload("Room").
		Preload("Room.Creator").
		Find(&members).Error
	if err != nil {
		return nil, apperr.Internalf(err, "list user memberships")
	}
	return members, nil
}

func (d *Database) CountMembers(ctx context.Context, roomID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Membership{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Internalf(err, "count members")
	}
	return count, nil
}
