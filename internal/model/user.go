package model

import "time"

// Rows in this schema are hard deleted. gorm's soft-delete column is left
// out on purpose: username, token and user_id carry plain unique indexes,
// and a soft-deleted row would keep blocking re-inserts of the same value.
type User struct {
	ID            uint `gorm:"primarykey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Username      string     `gorm:"column:username;unique;not null"`
	Password      string     `gorm:"column:password;not null"`
	DisplayName   string     `gorm:"column:display_name;not null"`
	Authority     string     `gorm:"column:authority;not null"`
	AccountLocked bool       `gorm:"column:account_locked;default:false;not null"`
	LoginAttempts int        `gorm:"column:login_attempts;default:0;not null"`
	AutoLockedAt  *time.Time `gorm:"column:auto_locked_at;default:null"`
}

// RefreshToken is the one live session token per user. A unique index on
// user_id enforces the single-session policy at the database level.
type RefreshToken struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex;not null"`
	User      User      `gorm:"foreignKey:UserID"`
}
