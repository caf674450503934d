package repository

import (
	"context"
	"time"

	"github.com/quillbase/blogserver/internal/model"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// FindByToken loads a refresh token together with its owning user.
func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByToken")

	start := time.Now()
	var refreshToken model.RefreshToken
	result := r.db.WithContext(ctx).Preload("User").Where("token = ?", token).First(&refreshToken)
	duration := time.Since(start)

	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get refresh token").
				Duration(duration).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &refreshToken, nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(token)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create refresh token").
			Uint("user_id", token.UserID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Refresh token created").
		Uint("user_id", token.UserID).
		Time("expires_at", token.ExpiresAt).
		Duration(duration).
		Log()

	return nil
}

// DeleteByUser removes the user's live refresh token if one exists.
// Deleting a user with no token is not an error.
func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteByUser")

	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete refresh token by user").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Refresh token deleted by user").
		Uint("user_id", userID).
		Int64("rows_affected", result.RowsAffected).
		Log()

	return nil
}

// DeleteByToken removes a token by its opaque string. Absence is not an
// error; logout is idempotent.
func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteByToken")

	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete refresh token").
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Refresh token deleted").
		Int64("rows_affected", result.RowsAffected).
		Log()

	return nil
}
