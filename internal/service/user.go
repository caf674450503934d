package service

import (
	"context"
	"errors"
	"time"

	"github.com/quillbase/blogserver/config"
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/internal/dto"
	apperrors "github.com/quillbase/blogserver/internal/errors"
	"github.com/quillbase/blogserver/internal/model"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"gorm.io/gorm"
)

// UserService orchestrates registration and the session lifecycle:
// login, token refresh, logout and account management.
type UserService struct {
	users           UserStore
	refreshTokens   RefreshTokenStore
	jwtService      *JWTService
	hasher          PasswordHasher
	lockout         *LockoutManager
	clock           Clock
	refreshTokenTTL time.Duration
}

func NewUserService(
	users UserStore,
	refreshTokens RefreshTokenStore,
	jwtService *JWTService,
	hasher PasswordHasher,
	lockout *LockoutManager,
	clock Clock,
	cfg config.JWTConfig,
) *UserService {
	return &UserService{
		users:           users,
		refreshTokens:   refreshTokens,
		jwtService:      jwtService,
		hasher:          hasher,
		lockout:         lockout,
		clock:           clock,
		refreshTokenTTL: cfg.RefreshDuration,
	}
}

// Register creates a new account with the Write authority and logs the
// user straight in, returning the same token pair a login would.
func (s *UserService) Register(ctx context.Context, req *dto.RegistrationRequest) (*dto.AuthenticationResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "Register")

	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperrors.ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username:    req.Username,
		Password:    hash,
		DisplayName: req.DisplayName,
		Authority:   constants.AuthorityWrite,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		Uint("user_id", user.ID).
		String("username", user.Username).
		Log()

	now := s.clock.Now()
	accessToken, err := s.jwtService.GenerateToken(user, now)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.issueRefreshToken(ctx, user, now)
	if err != nil {
		return nil, err
	}

	return &dto.AuthenticationResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtService.ExpirationSeconds(),
	}, nil
}

// Login authenticates the user and issues an access token plus a fresh
// refresh token. A locked account whose cooldown has elapsed is
// unlocked and the credential check retried once.
func (s *UserService) Login(ctx context.Context, req *dto.AuthenticationRequest) (*dto.AuthenticationResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "Login")

	resp, err := s.authenticate(ctx, req)
	if errors.Is(err, apperrors.ErrAccountLocked) {
		user, findErr := s.users.FindByUsername(ctx, req.Username)
		if findErr != nil {
			return nil, err
		}

		unlocked, unlockErr := s.lockout.TryAutoUnlock(ctx, user)
		if unlockErr != nil {
			return nil, unlockErr
		}
		if !unlocked {
			logger.LogAuth(req.Username, "login", false)
			return nil, err
		}

		resp, err = s.authenticate(ctx, req)
	}

	logger.LogAuth(req.Username, "login", err == nil)
	return resp, err
}

func (s *UserService) authenticate(ctx context.Context, req *dto.AuthenticationRequest) (*dto.AuthenticationResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error as a wrong password so usernames cannot be enumerated.
			return nil, apperrors.ErrBadCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.AccountLocked {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.hasher.Verify(user.Password, req.Password) {
		if recordErr := s.lockout.RecordFailure(ctx, req.Username); recordErr != nil {
			logger.WarnWithContext(ctx, "Failed to record login failure").
				String("username", req.Username).
				Err(recordErr).
				Log()
		}
		return nil, apperrors.ErrBadCredentials
	}

	if err := s.lockout.ResetOnSuccess(ctx, user); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	accessToken, err := s.jwtService.GenerateToken(user, now)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.issueRefreshToken(ctx, user, now)
	if err != nil {
		return nil, err
	}

	return &dto.AuthenticationResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtService.ExpirationSeconds(),
	}, nil
}

// issueRefreshToken replaces the user's stored refresh token with a new
// one. At most one token per user exists; if a concurrent login wins
// the insert the delete-then-insert is retried once.
func (s *UserService) issueRefreshToken(ctx context.Context, user *model.User, now time.Time) (string, error) {
	token, err := s.jwtService.GenerateRefreshToken()
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	record := &model.RefreshToken{
		Token:     token,
		ExpiresAt: now.Add(s.refreshTokenTTL),
		UserID:    user.ID,
	}

	for attempt := 0; attempt < 2; attempt++ {
		if err := s.refreshTokens.DeleteByUser(ctx, user.ID); err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}

		err = s.refreshTokens.Create(ctx, record)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}

		// A concurrent login inserted between our delete and insert.
		record.ID = 0
	}

	return "", apperrors.WrapError(apperrors.ErrInternal, err)
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is kept; it stays valid until it expires or the
// user logs in again. An expired token is deleted on sight.
func (s *UserService) Refresh(ctx context.Context, token string) (*dto.RefreshResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "Refresh")

	record, err := s.refreshTokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBadCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	now := s.clock.Now()
	if !record.ExpiresAt.After(now) {
		if delErr := s.refreshTokens.DeleteByToken(ctx, token); delErr != nil {
			logger.WarnWithContext(ctx, "Failed to delete expired refresh token").
				Uint("user_id", record.UserID).
				Err(delErr).
				Log()
		}
		return nil, apperrors.ErrRefreshTokenExpired
	}

	accessToken, err := s.jwtService.GenerateToken(&record.User, now)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.RefreshResponse{
		Token:     accessToken,
		ExpiresIn: s.jwtService.ExpirationSeconds(),
	}, nil
}

// Logout discards the refresh token named in the request. An unknown
// token is not an error; logging out twice is fine. Access tokens
// already issued remain valid until they expire.
func (s *UserService) Logout(ctx context.Context, token string) error {
	ctx = ctxutil.WithOperation(ctx, "user", "Logout")

	if err := s.refreshTokens.DeleteByToken(ctx, token); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged out").Log()

	return nil
}

// ChangePassword verifies the caller's current password before setting
// the new one. The caller is always the authenticated user; changing
// another user's password is not supported.
func (s *UserService) ChangePassword(ctx context.Context, callerID uint, req *dto.PasswordChangeRequest) error {
	ctx = ctxutil.WithOperation(ctx, "user", "ChangePassword")

	user, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Verify(user.Password, req.OldPassword) {
		return apperrors.ErrBadCredentials
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user.Password = hash
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password changed").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// ChangeAuthority sets a user's authority. Admin only; enforced at the
// router.
func (s *UserService) ChangeAuthority(ctx context.Context, userID uint, authority string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "ChangeAuthority")

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user.Authority = authority
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Authority changed").
		Uint("user_id", user.ID).
		String("authority", authority).
		Log()

	return toUserResponse(user), nil
}

// GetUser returns a user's public profile.
func (s *UserService) GetUser(ctx context.Context, id uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user", "GetUser")

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toUserResponse(user), nil
}

// DeleteUser removes the account and everything hanging off it: the
// refresh token, the user's posts and their media and tag links.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "user", "DeleteUser")

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.DeleteWithDependents(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User deleted").
		Uint("user_id", id).
		String("username", user.Username).
		Log()

	return nil
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		Authority:     user.Authority,
		AccountLocked: user.AccountLocked,
		LoginAttempts: user.LoginAttempts,
		AutoLockedAt:  user.AutoLockedAt,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
