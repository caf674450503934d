package service

import (
	"context"
	"errors"
	"time"

	"github.com/quillbase/blogserver/config"
	apperrors "github.com/quillbase/blogserver/internal/errors"
	"github.com/quillbase/blogserver/internal/model"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"gorm.io/gorm"
)

// LockoutManager tracks failed login attempts and locks accounts that
// exceed the configured limit. Locked accounts unlock themselves once
// the cooldown elapses; the check happens lazily on the next login.
type LockoutManager struct {
	users        UserStore
	clock        Clock
	maxAttempts  int
	lockDuration time.Duration
}

func NewLockoutManager(users UserStore, clock Clock, cfg config.AuthConfig) *LockoutManager {
	return &LockoutManager{
		users:        users,
		clock:        clock,
		maxAttempts:  cfg.MaxLoginAttempts,
		lockDuration: cfg.LockDuration,
	}
}

// RecordFailure bumps the attempt counter for the named user and locks
// the account when the limit is reached. Unknown usernames are ignored
// so callers cannot learn which accounts exist.
func (m *LockoutManager) RecordFailure(ctx context.Context, username string) error {
	ctx = ctxutil.WithOperation(ctx, "lockout", "RecordFailure")

	user, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user.LoginAttempts++
	if user.LoginAttempts >= m.maxAttempts && !user.AccountLocked {
		now := m.clock.Now()
		user.AccountLocked = true
		user.AutoLockedAt = &now

		logger.WarnWithContext(ctx, "Account locked after repeated login failures").
			String("username", username).
			Int("attempts", user.LoginAttempts).
			Log()
	}

	if err := m.users.Save(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return nil
}

// TryAutoUnlock clears an expired lock. It reports true when the
// account ended up unlocked, either because the cooldown elapsed or
// because the account was never locked.
func (m *LockoutManager) TryAutoUnlock(ctx context.Context, user *model.User) (bool, error) {
	ctx = ctxutil.WithOperation(ctx, "lockout", "TryAutoUnlock")

	if !user.AccountLocked {
		return true, nil
	}

	if user.AutoLockedAt == nil {
		// Locked by an administrator; only an explicit unlock clears it.
		return false, nil
	}

	if m.clock.Now().Before(user.AutoLockedAt.Add(m.lockDuration)) {
		return false, nil
	}

	user.AccountLocked = false
	user.LoginAttempts = 0
	user.AutoLockedAt = nil

	if err := m.users.Save(ctx, user); err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Account auto-unlocked after cooldown").
		String("username", user.Username).
		Log()

	return true, nil
}

// ResetOnSuccess clears the attempt counter after a successful login.
func (m *LockoutManager) ResetOnSuccess(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "lockout", "ResetOnSuccess")

	if user.LoginAttempts == 0 && !user.AccountLocked {
		return nil
	}

	user.LoginAttempts = 0
	user.AccountLocked = false
	user.AutoLockedAt = nil

	if err := m.users.Save(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return nil
}
