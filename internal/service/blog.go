package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/quillbase/blogserver/config"
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/internal/dto"
	apperrors "github.com/quillbase/blogserver/internal/errors"
	"github.com/quillbase/blogserver/internal/model"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"gorm.io/gorm"
)

const summaryRuneLimit = 100

// PostCache holds serialized listing pages so repeated reads skip the
// database. Satisfied by the redis client.
type PostCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// BlogService manages posts, their tags and their media metadata.
type BlogService struct {
	posts   BlogStore
	tags    TagStore
	users   UserDirectory
	cache   PostCache
	cacheOn bool
	postTTL time.Duration
}

func NewBlogService(posts BlogStore, tags TagStore, users UserDirectory, cache PostCache, cfg config.CacheConfig) *BlogService {
	return &BlogService{
		posts:   posts,
		tags:    tags,
		users:   users,
		cache:   cache,
		cacheOn: cfg.Enabled && cache != nil,
		postTTL: cfg.PostTTL,
	}
}

// CreatePost stores a new post owned by the caller, resolving tag names
// and attaching media metadata in the request.
func (s *BlogService) CreatePost(ctx context.Context, callerID uint, req *dto.BlogPostRequest) (*dto.BlogPostResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "CreatePost")

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	post := &model.BlogPost{
		Title:   req.Title,
		Content: req.Content,
		UserID:  callerID,
		Tags:    tags,
	}
	for _, m := range req.Media {
		post.MediaFiles = append(post.MediaFiles, model.MediaFile{
			URL:       m.URL,
			MediaType: m.MediaType,
			Width:     m.Width,
			Height:    m.Height,
			Metadata:  m.Metadata,
		})
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateTitle
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidateListings(ctx)

	created, err := s.posts.FindByID(ctx, post.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toBlogPostResponse(created), nil
}

// GetPost returns the full post with tags, media and author.
func (s *BlogService) GetPost(ctx context.Context, id uint) (*dto.BlogPostResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "GetPost")

	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}

	return toBlogPostResponse(post), nil
}

// ListPosts returns a page of full posts in ID order. Pages are cached
// briefly; any write drops the cached listings.
func (s *BlogService) ListPosts(ctx context.Context, params constants.PaginationParams) ([]dto.BlogPostResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "ListPosts")

	key := fmt.Sprintf("%sall:%d:%d", constants.CacheKeyPosts, params.Page, params.Size)
	if cached, total, ok := s.cachedDetailPage(ctx, key); ok {
		return cached, total, nil
	}

	posts, total, err := s.posts.FindAll(ctx, params.Size, params.Offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.BlogPostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, *toBlogPostResponse(&posts[i]))
	}
	s.storeDetailPage(ctx, key, out, total)
	return out, total, nil
}

// ListPostSummaries returns the same page with content truncated to a
// short summary, for listing views that do not need full bodies.
func (s *BlogService) ListPostSummaries(ctx context.Context, params constants.PaginationParams) ([]dto.BlogPostSummaryResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "ListPostSummaries")

	key := fmt.Sprintf("%ssummaries:%d:%d", constants.CacheKeyPosts, params.Page, params.Size)
	if cached, total, ok := s.cachedPage(ctx, key); ok {
		return cached, total, nil
	}

	posts, total, err := s.posts.FindAll(ctx, params.Size, params.Offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	summaries := toSummaries(posts)
	s.storePage(ctx, key, summaries, total)
	return summaries, total, nil
}

// ListPostsByTag returns a page of summaries for posts carrying the tag.
func (s *BlogService) ListPostsByTag(ctx context.Context, tagName string, params constants.PaginationParams) ([]dto.BlogPostSummaryResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "ListPostsByTag")

	if _, err := s.tags.FindByName(ctx, tagName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.ErrTagNotFound
		}
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	key := fmt.Sprintf("%stag:%s:%d:%d", constants.CacheKeyPosts, tagName, params.Page, params.Size)
	if cached, total, ok := s.cachedPage(ctx, key); ok {
		return cached, total, nil
	}

	posts, total, err := s.posts.FindAllByTag(ctx, tagName, params.Size, params.Offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	summaries := toSummaries(posts)
	s.storePage(ctx, key, summaries, total)
	return summaries, total, nil
}

// ListPostsByUser returns a page of summaries for one author. An
// unknown author is NotFound, not an empty page.
func (s *BlogService) ListPostsByUser(ctx context.Context, userID uint, params constants.PaginationParams) ([]dto.BlogPostSummaryResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "ListPostsByUser")

	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !exists {
		return nil, 0, apperrors.ErrUserNotFound
	}

	posts, total, err := s.posts.FindAllByUser(ctx, userID, params.Size, params.Offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toSummaries(posts), total, nil
}

// SearchPosts scans titles, content and tag names for the query string.
func (s *BlogService) SearchPosts(ctx context.Context, query string, params constants.PaginationParams) ([]dto.BlogPostSummaryResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "SearchPosts")

	posts, total, err := s.posts.Search(ctx, query, params.Size, params.Offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toSummaries(posts), total, nil
}

// UpdatePost rewrites title, content and tags. Only the owner or an
// admin may update.
func (s *BlogService) UpdatePost(ctx context.Context, callerID uint, callerAuthority string, id uint, req *dto.BlogPostRequest) (*dto.BlogPostResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "UpdatePost")

	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwnership(post, callerID, callerAuthority); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.Content = req.Content

	if err := s.posts.Save(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateTitle
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.posts.ReplaceTags(ctx, post, tags); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidateListings(ctx)

	updated, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toBlogPostResponse(updated), nil
}

// AddTag attaches the named tag to the post, creating the tag row if it
// does not exist yet. Only the owner or an admin may change tags.
func (s *BlogService) AddTag(ctx context.Context, callerID uint, callerAuthority string, postID uint, req *dto.TagRequest) (*dto.BlogPostResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "AddTag")

	return s.attachTag(ctx, callerID, callerAuthority, postID, req.Name)
}

// AddTagByName behaves like AddTag with the name taken from the URL
// instead of a request body.
func (s *BlogService) AddTagByName(ctx context.Context, callerID uint, callerAuthority string, postID uint, tagName string) (*dto.BlogPostResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "AddTagByName")

	return s.attachTag(ctx, callerID, callerAuthority, postID, tagName)
}

func (s *BlogService) attachTag(ctx context.Context, callerID uint, callerAuthority string, postID uint, tagName string) (*dto.BlogPostResponse, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwnership(post, callerID, callerAuthority); err != nil {
		return nil, err
	}

	tags, err := s.tags.FindOrCreate(ctx, []string{tagName})
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if len(tags) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	if err := s.posts.AppendTag(ctx, post, tags[0]); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidateListings(ctx)

	updated, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toBlogPostResponse(updated), nil
}

// RemoveTag detaches the named tag from the post. Removing a tag the
// post does not carry is a no-op; the tag row itself always survives.
func (s *BlogService) RemoveTag(ctx context.Context, callerID uint, callerAuthority string, postID uint, tagName string) (*dto.BlogPostResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "RemoveTag")

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwnership(post, callerID, callerAuthority); err != nil {
		return nil, err
	}

	for _, tag := range post.Tags {
		if tag.Name == tagName {
			if err := s.posts.RemoveTag(ctx, post, tag); err != nil {
				return nil, apperrors.WrapError(apperrors.ErrInternal, err)
			}
			s.invalidateListings(ctx)
			break
		}
	}

	updated, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toBlogPostResponse(updated), nil
}

// DeletePost removes a post and its media. Only the owner or an admin
// may delete.
func (s *BlogService) DeletePost(ctx context.Context, callerID uint, callerAuthority string, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "blog", "DeletePost")

	post, err := s.loadPost(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireOwnership(post, callerID, callerAuthority); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidateListings(ctx)
	return nil
}

// AddMedia attaches media metadata to an existing post.
func (s *BlogService) AddMedia(ctx context.Context, callerID uint, callerAuthority string, postID uint, req *dto.MediaFileRequest) (*dto.MediaFileResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "AddMedia")

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwnership(post, callerID, callerAuthority); err != nil {
		return nil, err
	}

	media := &model.MediaFile{
		URL:        req.URL,
		MediaType:  req.MediaType,
		Width:      req.Width,
		Height:     req.Height,
		Metadata:   req.Metadata,
		BlogPostID: postID,
	}

	if err := s.posts.AddMediaFile(ctx, media); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := toMediaResponse(media)
	return &resp, nil
}

// DeleteMedia detaches one media entry from a post.
func (s *BlogService) DeleteMedia(ctx context.Context, callerID uint, callerAuthority string, postID, mediaID uint) error {
	ctx = ctxutil.WithOperation(ctx, "blog", "DeleteMedia")

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.requireOwnership(post, callerID, callerAuthority); err != nil {
		return err
	}

	if err := s.posts.DeleteMediaFile(ctx, postID, mediaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMediaNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return nil
}

// ListTags returns every known tag.
func (s *BlogService) ListTags(ctx context.Context) ([]dto.TagResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "blog", "ListTags")

	tags, err := s.tags.FindAll(ctx)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagResponse{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (s *BlogService) loadPost(ctx context.Context, id uint) (*model.BlogPost, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return post, nil
}

func (s *BlogService) requireOwnership(post *model.BlogPost, callerID uint, callerAuthority string) error {
	if post.UserID != callerID && callerAuthority != constants.AuthorityAdmin {
		return apperrors.ErrNotPostOwner
	}
	return nil
}

func (s *BlogService) resolveTags(ctx context.Context, reqs []dto.TagRequest) ([]model.Tag, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(reqs))
	for _, t := range reqs {
		names = append(names, t.Name)
	}

	tags, err := s.tags.FindOrCreate(ctx, names)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return tags, nil
}

type cachedListing struct {
	Posts []dto.BlogPostSummaryResponse `json:"posts"`
	Total int64                         `json:"total"`
}

type cachedDetailListing struct {
	Posts []dto.BlogPostResponse `json:"posts"`
	Total int64                  `json:"total"`
}

func (s *BlogService) cachedDetailPage(ctx context.Context, key string) ([]dto.BlogPostResponse, int64, bool) {
	if !s.cacheOn {
		return nil, 0, false
	}

	var listing cachedDetailListing
	if err := s.cache.GetJSON(ctx, key, &listing); err != nil {
		return nil, 0, false
	}

	logger.DebugWithContext(ctx, "Post listing served from cache").
		String("cache_key", key).
		Log()

	return listing.Posts, listing.Total, true
}

func (s *BlogService) storeDetailPage(ctx context.Context, key string, posts []dto.BlogPostResponse, total int64) {
	if !s.cacheOn {
		return
	}

	if err := s.cache.SetJSON(ctx, key, cachedDetailListing{Posts: posts, Total: total}, s.postTTL); err != nil {
		logger.WarnWithContext(ctx, "Failed to cache post listing").
			String("cache_key", key).
			Err(err).
			Log()
	}
}

func (s *BlogService) cachedPage(ctx context.Context, key string) ([]dto.BlogPostSummaryResponse, int64, bool) {
	if !s.cacheOn {
		return nil, 0, false
	}

	var listing cachedListing
	if err := s.cache.GetJSON(ctx, key, &listing); err != nil {
		return nil, 0, false
	}

	logger.DebugWithContext(ctx, "Post listing served from cache").
		String("cache_key", key).
		Log()

	return listing.Posts, listing.Total, true
}

func (s *BlogService) storePage(ctx context.Context, key string, posts []dto.BlogPostSummaryResponse, total int64) {
	if !s.cacheOn {
		return
	}

	if err := s.cache.SetJSON(ctx, key, cachedListing{Posts: posts, Total: total}, s.postTTL); err != nil {
		logger.WarnWithContext(ctx, "Failed to cache post listing").
			String("cache_key", key).
			Err(err).
			Log()
	}
}

func (s *BlogService) invalidateListings(ctx context.Context) {
	if !s.cacheOn {
		return
	}

	if err := s.cache.DeletePattern(ctx, constants.CacheKeyPosts+"*"); err != nil {
		logger.WarnWithContext(ctx, "Failed to invalidate post listings").
			Err(err).
			Log()
	}
}

func toBlogPostResponse(post *model.BlogPost) *dto.BlogPostResponse {
	resp := &dto.BlogPostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Author:    post.User.Username,
		UserID:    post.UserID,
		Tags:      make([]dto.TagResponse, 0, len(post.Tags)),
		Media:     make([]dto.MediaFileResponse, 0, len(post.MediaFiles)),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	for _, t := range post.Tags {
		resp.Tags = append(resp.Tags, dto.TagResponse{ID: t.ID, Name: t.Name})
	}
	for _, m := range post.MediaFiles {
		resp.Media = append(resp.Media, toMediaResponse(&m))
	}
	return resp
}

func toMediaResponse(m *model.MediaFile) dto.MediaFileResponse {
	return dto.MediaFileResponse{
		ID:        m.ID,
		URL:       m.URL,
		MediaType: m.MediaType,
		Width:     m.Width,
		Height:    m.Height,
		Metadata:  m.Metadata,
	}
}

func toSummaries(posts []model.BlogPost) []dto.BlogPostSummaryResponse {
	out := make([]dto.BlogPostSummaryResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, dto.BlogPostSummaryResponse{
			ID:      p.ID,
			Title:   p.Title,
			Summary: summarize(p.Content),
			Author:  p.User.Username,
		})
	}
	return out
}

func summarize(content string) string {
	if utf8.RuneCountInString(content) <= summaryRuneLimit {
		return content
	}

	runes := []rune(content)
	return string(runes[:summaryRuneLimit]) + "..."
}
