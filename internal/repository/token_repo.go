package repository

import (
	"context"
	"errors"

	"authflow/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository stores the three single-use token kinds. All lookups
// return (nil, nil) when no row matches.
type TokenRepository interface {
	// Replace deletes any live token for the email and inserts the new row
	// in one transaction, so each (kind, email) holds at most one token.
	Replace(ctx context.Context, kind entity.TokenKind, token *entity.AuthToken) error
	FindByToken(ctx context.Context, kind entity.TokenKind, token string) (*entity.AuthToken, error)
	FindByEmail(ctx context.Context, kind entity.TokenKind, email string) (*entity.AuthToken, error)
	Delete(ctx context.Context, kind entity.TokenKind, id uuid.UUID) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Replace(ctx context.Context, kind entity.TokenKind, token *entity.AuthToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(kind.TableName()).
			Where("email = ?", token.Email).
			Delete(&entity.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Table(kind.TableName()).Create(token).Error
	})
}

func (r *tokenRepository) FindByToken(ctx context.Context, kind entity.TokenKind, token string) (*entity.AuthToken, error) {
	var row entity.AuthToken
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("token = ?", token).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepository) FindByEmail(ctx context.Context, kind entity.TokenKind, email string) (*entity.AuthToken, error) {
	var row entity.AuthToken
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("email = ?", email).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepository) Delete(ctx context.Context, kind entity.TokenKind, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("id = ?", id).
		Delete(&entity.AuthToken{}).
		Error
}
