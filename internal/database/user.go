package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/apperr"
	"github.com/thereayou/roomly/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	return d.db.WithContext(ctx).Create(user).Error
}

func (d *Database) UpdateUser(ctx context.Context, user *models.User) error {
	return d.db.WithContext(ctx).Save(user).Error
}

func (d *Database) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Internalf(err, "load user")
	}
	return &user, nil
}

func (d *Database) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Internalf(err, "load user by email")
	}
	return &user, nil
}

func (d *Database) SearchUsersByUsername(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).
		Where("username ILIKE ?", "%"+query+"%").
		Limit(20).
		Find(&users).Error
	if err != nil {
		return nil, apperr.Internalf(err, "search users")
	}
	return users, nil
}
