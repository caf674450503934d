package service

import (
	"context"

	"github.com/quillbase/blogserver/internal/model"
)

// UserStore is the persistence surface the user services need.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	DeleteWithDependents(ctx context.Context, user *model.User) error
}

// UserDirectory is the slice of UserStore other services need: just
// enough to tell whether an author exists.
type UserDirectory interface {
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

// RefreshTokenStore manages the single active refresh token per user.
type RefreshTokenStore interface {
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	Create(ctx context.Context, token *model.RefreshToken) error
	DeleteByUser(ctx context.Context, userID uint) error
	DeleteByToken(ctx context.Context, token string) error
}

// BlogStore is the persistence surface the blog service needs.
type BlogStore interface {
	Create(ctx context.Context, post *model.BlogPost) error
	FindByID(ctx context.Context, id uint) (*model.BlogPost, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.BlogPost, int64, error)
	FindAllByTag(ctx context.Context, tagName string, limit, offset int) ([]model.BlogPost, int64, error)
	FindAllByUser(ctx context.Context, userID uint, limit, offset int) ([]model.BlogPost, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]model.BlogPost, int64, error)
	Save(ctx context.Context, post *model.BlogPost) error
	ReplaceTags(ctx context.Context, post *model.BlogPost, tags []model.Tag) error
	AppendTag(ctx context.Context, post *model.BlogPost, tag model.Tag) error
	RemoveTag(ctx context.Context, post *model.BlogPost, tag model.Tag) error
	AddMediaFile(ctx context.Context, media *model.MediaFile) error
	DeleteMediaFile(ctx context.Context, postID, mediaID uint) error
	Delete(ctx context.Context, post *model.BlogPost) error
}

// TagStore resolves tag names to rows.
type TagStore interface {
	FindByName(ctx context.Context, name string) (*model.Tag, error)
	FindAll(ctx context.Context) ([]model.Tag, error)
	FindOrCreate(ctx context.Context, names []string) ([]model.Tag, error)
}
