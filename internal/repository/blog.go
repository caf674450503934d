package repository

import (
	"context"
	"time"

	"github.com/quillbase/blogserver/internal/model"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"gorm.io/gorm"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Tags").Preload("MediaFiles").Preload("User")
}

func (r *BlogRepository) Create(ctx context.Context, post *model.BlogPost) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(post)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create blog post").
			String("title", post.Title).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Blog post created").
		Uint("post_id", post.ID).
		String("title", post.Title).
		Duration(duration).
		Log()

	return nil
}

func (r *BlogRepository) FindByID(ctx context.Context, id uint) (*model.BlogPost, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByID")

	var post model.BlogPost
	result := r.preloaded(ctx).Where("id = ?", id).First(&post)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get blog post").
				Uint("post_id", id).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &post, nil
}

func (r *BlogRepository) FindAll(ctx context.Context, limit, offset int) ([]model.BlogPost, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindAll")

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.BlogPost{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.BlogPost
	if err := r.preloaded(ctx).Order("id").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch blog posts").
			Int("limit", limit).
			Int("offset", offset).
			Err(err).
			Log()
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *BlogRepository) FindAllByTag(ctx context.Context, tagName string, limit, offset int) ([]model.BlogPost, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindAllByTag")

	base := r.db.WithContext(ctx).Model(&model.BlogPost{}).
		Joins("JOIN blog_post_tags bpt ON bpt.blog_post_id = blog_posts.id").
		Joins("JOIN tags ON tags.id = bpt.tag_id").
		Where("tags.name = ?", tagName)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	if err := base.Order("blog_posts.id").Limit(limit).Offset(offset).Pluck("blog_posts.id", &ids).Error; err != nil {
		return nil, 0, err
	}

	if len(ids) == 0 {
		return []model.BlogPost{}, total, nil
	}

	var posts []model.BlogPost
	if err := r.preloaded(ctx).Where("id IN ?", ids).Order("id").Find(&posts).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch blog posts by tag").
			String("tag", tagName).
			Err(err).
			Log()
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *BlogRepository) FindAllByUser(ctx context.Context, userID uint, limit, offset int) ([]model.BlogPost, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindAllByUser")

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.BlogPost{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.BlogPost
	if err := r.preloaded(ctx).Where("user_id = ?", userID).Order("id").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch blog posts by user").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, 0, err
	}

	return posts, total, nil
}

// Search matches the query against title, content and tag names with a
// case-insensitive pattern scan.
func (r *BlogRepository) Search(ctx context.Context, query string, limit, offset int) ([]model.BlogPost, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "Search")

	pattern := "%" + query + "%"
	base := r.db.WithContext(ctx).Model(&model.BlogPost{}).
		Joins("LEFT JOIN blog_post_tags bpt ON bpt.blog_post_id = blog_posts.id").
		Joins("LEFT JOIN tags ON tags.id = bpt.tag_id").
		Where("blog_posts.title ILIKE ? OR blog_posts.content ILIKE ? OR tags.name ILIKE ?",
			pattern, pattern, pattern).
		Distinct("blog_posts.id")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	if err := base.Order("blog_posts.id").Limit(limit).Offset(offset).Pluck("blog_posts.id", &ids).Error; err != nil {
		return nil, 0, err
	}

	if len(ids) == 0 {
		return []model.BlogPost{}, total, nil
	}

	var posts []model.BlogPost
	if err := r.preloaded(ctx).Where("id IN ?", ids).Order("id").Find(&posts).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to search blog posts").
			String("query", query).
			Err(err).
			Log()
		return nil, 0, err
	}

	return posts, total, nil
}

// Save persists title/content changes on an existing post.
func (r *BlogRepository) Save(ctx context.Context, post *model.BlogPost) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Save")

	result := r.db.WithContext(ctx).Model(&model.BlogPost{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"title":   post.Title,
		"content": post.Content,
	})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to save blog post").
			Uint("post_id", post.ID).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ReplaceTags swaps the post's tag set for the given one.
func (r *BlogRepository) ReplaceTags(ctx context.Context, post *model.BlogPost, tags []model.Tag) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "ReplaceTags")

	if err := r.db.WithContext(ctx).Model(post).Association("Tags").Replace(tags); err != nil {
		logger.ErrorWithContext(ctx, "Failed to replace tags").
			Uint("post_id", post.ID).
			Err(err).
			Log()
		return err
	}

	return nil
}

// AppendTag links one more tag to the post. Appending a tag the post
// already carries is a no-op.
func (r *BlogRepository) AppendTag(ctx context.Context, post *model.BlogPost, tag model.Tag) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "AppendTag")

	if err := r.db.WithContext(ctx).Model(post).Association("Tags").Append(&tag); err != nil {
		logger.ErrorWithContext(ctx, "Failed to append tag").
			Uint("post_id", post.ID).
			String("tag", tag.Name).
			Err(err).
			Log()
		return err
	}

	return nil
}

// RemoveTag unlinks the tag from the post. The tag row itself survives;
// it may be shared across posts.
func (r *BlogRepository) RemoveTag(ctx context.Context, post *model.BlogPost, tag model.Tag) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "RemoveTag")

	if err := r.db.WithContext(ctx).Model(post).Association("Tags").Delete(&tag); err != nil {
		logger.ErrorWithContext(ctx, "Failed to remove tag").
			Uint("post_id", post.ID).
			String("tag", tag.Name).
			Err(err).
			Log()
		return err
	}

	return nil
}

func (r *BlogRepository) AddMediaFile(ctx context.Context, media *model.MediaFile) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "AddMediaFile")

	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to add media file").
			Uint("post_id", media.BlogPostID).
			Err(err).
			Log()
		return err
	}

	return nil
}

func (r *BlogRepository) DeleteMediaFile(ctx context.Context, postID, mediaID uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteMediaFile")

	result := r.db.WithContext(ctx).Where("id = ? AND blog_post_id = ?", mediaID, postID).Delete(&model.MediaFile{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete media file").
			Uint("post_id", postID).
			Uint("media_id", mediaID).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes a post, its media files and its tag links in one
// transaction. Tags themselves survive; they may be shared across posts.
func (r *BlogRepository) Delete(ctx context.Context, post *model.BlogPost) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Delete")

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_post_id = ?", post.ID).Delete(&model.MediaFile{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM blog_post_tags WHERE blog_post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete blog post").
			Uint("post_id", post.ID).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Blog post deleted").
		Uint("post_id", post.ID).
		Duration(duration).
		Log()

	return nil
}
