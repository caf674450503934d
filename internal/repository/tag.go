package repository

import (
	"context"
	"strings"

	"github.com/quillbase/blogserver/internal/model"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByName")

	var tag model.Tag
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&tag)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get tag").
				String("tag", name).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &tag, nil
}

func (r *TagRepository) FindAll(ctx context.Context) ([]model.Tag, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindAll")

	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch tags").
			Err(err).
			Log()
		return nil, err
	}

	return tags, nil
}

// FindOrCreate resolves tag names to rows, inserting any that do not
// exist yet. Names are trimmed and lowercased before lookup.
func (r *TagRepository) FindOrCreate(ctx context.Context, names []string) ([]model.Tag, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindOrCreate")

	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag := model.Tag{Name: name}
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&tag).Error
		if err != nil {
			logger.ErrorWithContext(ctx, "Failed to create tag").
				String("tag", name).
				Err(err).
				Log()
			return nil, err
		}

		// DoNothing leaves ID zero when the row already existed.
		if tag.ID == 0 {
			if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
				return nil, err
			}
		}

		tags = append(tags, tag)
	}

	return tags, nil
}
