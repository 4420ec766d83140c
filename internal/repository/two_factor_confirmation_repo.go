package repository

import (
	"context"
	"errors"

	"authflow/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TwoFactorConfirmationRepository interface {
	// Replace removes any confirmation the user already holds and creates a
	// fresh one, in a single transaction.
	Replace(ctx context.Context, confirmation *entity.TwoFactorConfirmation) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TwoFactorConfirmation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type twoFactorConfirmationRepository struct {
	db *gorm.DB
}

func NewTwoFactorConfirmationRepository(db *gorm.DB) TwoFactorConfirmationRepository {
	return &twoFactorConfirmationRepository{db: db}
}

func (r *twoFactorConfirmationRepository) Replace(ctx context.Context, confirmation *entity.TwoFactorConfirmation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", confirmation.UserID).
			Delete(&entity.TwoFactorConfirmation{}).Error; err != nil {
			return err
		}
		return tx.Create(confirmation).Error
	})
}

func (r *twoFactorConfirmationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TwoFactorConfirmation, error) {
	var confirmation entity.TwoFactorConfirmation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&confirmation).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (r *twoFactorConfirmationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.TwoFactorConfirmation{}).
		Error
}
