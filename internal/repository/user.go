package repository

import (
	"context"
	"time"

	"github.com/quillbase/blogserver/internal/model"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByID")

	logger.DebugWithContext(ctx, "Getting user by ID").
		Uint("user_id", id).
		Log()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get user by ID").
				Uint("user_id", id).
				Duration(duration).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByUsername")

	logger.DebugWithContext(ctx, "Getting user by username").
		String("username", username).
		Log()

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("username = ?", username).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get user by username").
				String("username", username).
				Duration(duration).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &user, nil
}

// ExistsByID reports whether a user row with the given ID exists.
func (r *UserRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "ExistsByID")

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to check user existence").
			Uint("user_id", id).
			Err(err).
			Log()
		return false, err
	}

	return count > 0, nil
}

// Create inserts a new user row
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created").
		String("username", user.Username).
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

// Save persists every mutable field of an existing user row. Lockout state
// transitions go through here, so zero values (attempts=0, locked=false,
// auto_locked_at=nil) must be written too.
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Save")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"password":       user.Password,
		"display_name":   user.DisplayName,
		"authority":      user.Authority,
		"account_locked": user.AccountLocked,
		"login_attempts": user.LoginAttempts,
		"auto_locked_at": user.AutoLockedAt,
	})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to save user").
			Uint("user_id", user.ID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "User saved").
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

// DeleteWithDependents hard deletes a user together with their refresh token
// and posts in one transaction. Dependents go first so a mid-flight failure
// never leaves orphaned rows pointing at a missing user.
func (r *UserRepository) DeleteWithDependents(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteWithDependents")

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.RefreshToken{}).Error; err != nil {
			return err
		}

		var postIDs []uint
		if err := tx.Model(&model.BlogPost{}).Where("user_id = ?", user.ID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			if err := tx.Where("blog_post_id IN ?", postIDs).Delete(&model.MediaFile{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM blog_post_tags WHERE blog_post_id IN ?", postIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&model.BlogPost{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(user).Error
	})
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete user with dependents").
			Uint("user_id", user.ID).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "User deleted").
		Uint("user_id", user.ID).
		String("username", user.Username).
		Duration(duration).
		Log()

	return nil
}
