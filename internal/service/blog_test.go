package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quillbase/blogserver/config"
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/internal/dto"
	apperrors "github.com/quillbase/blogserver/internal/errors"
	"github.com/quillbase/blogserver/internal/model"
	"gorm.io/gorm"
)

// fakeBlogStore keeps posts in memory with the same title uniqueness
// rule the database enforces.
type fakeBlogStore struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]*model.BlogPost
}

func newFakeBlogStore() *fakeBlogStore {
	return &fakeBlogStore{nextID: 1, posts: make(map[uint]*model.BlogPost)}
}

func (s *fakeBlogStore) Create(_ context.Context, post *model.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.posts {
		if existing.Title == post.Title {
			return gorm.ErrDuplicatedKey
		}
	}

	post.ID = s.nextID
	s.nextID++
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *fakeBlogStore) FindByID(_ context.Context, id uint) (*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *post
	return &copied, nil
}

func (s *fakeBlogStore) FindAll(_ context.Context, limit, offset int) ([]model.BlogPost, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []model.BlogPost
	for id := uint(1); id < s.nextID; id++ {
		if post, ok := s.posts[id]; ok {
			all = append(all, *post)
		}
	}

	total := int64(len(all))
	if offset >= len(all) {
		return []model.BlogPost{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *fakeBlogStore) FindAllByTag(_ context.Context, tagName string, limit, offset int) ([]model.BlogPost, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.BlogPost
	for id := uint(1); id < s.nextID; id++ {
		post, ok := s.posts[id]
		if !ok {
			continue
		}
		for _, tag := range post.Tags {
			if tag.Name == tagName {
				matched = append(matched, *post)
				break
			}
		}
	}
	return window(matched, limit, offset)
}

func (s *fakeBlogStore) FindAllByUser(_ context.Context, userID uint, limit, offset int) ([]model.BlogPost, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.BlogPost
	for id := uint(1); id < s.nextID; id++ {
		if post, ok := s.posts[id]; ok && post.UserID == userID {
			matched = append(matched, *post)
		}
	}
	return window(matched, limit, offset)
}

func (s *fakeBlogStore) Search(_ context.Context, query string, limit, offset int) ([]model.BlogPost, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lowered := strings.ToLower(query)
	var matched []model.BlogPost
	for id := uint(1); id < s.nextID; id++ {
		post, ok := s.posts[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(post.Title), lowered) ||
			strings.Contains(strings.ToLower(post.Content), lowered) {
			matched = append(matched, *post)
			continue
		}
		for _, tag := range post.Tags {
			if strings.Contains(strings.ToLower(tag.Name), lowered) {
				matched = append(matched, *post)
				break
			}
		}
	}
	return window(matched, limit, offset)
}

func (s *fakeBlogStore) Save(_ context.Context, post *model.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for id, other := range s.posts {
		if id != post.ID && other.Title == post.Title {
			return gorm.ErrDuplicatedKey
		}
	}
	existing.Title = post.Title
	existing.Content = post.Content
	return nil
}

func (s *fakeBlogStore) ReplaceTags(_ context.Context, post *model.BlogPost, tags []model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Tags = tags
	return nil
}

func (s *fakeBlogStore) AppendTag(_ context.Context, post *model.BlogPost, tag model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, t := range existing.Tags {
		if t.Name == tag.Name {
			return nil
		}
	}
	existing.Tags = append(existing.Tags, tag)
	return nil
}

func (s *fakeBlogStore) RemoveTag(_ context.Context, post *model.BlogPost, tag model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i, t := range existing.Tags {
		if t.Name == tag.Name {
			existing.Tags = append(existing.Tags[:i], existing.Tags[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeBlogStore) AddMediaFile(_ context.Context, media *model.MediaFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[media.BlogPostID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	media.ID = s.nextID
	s.nextID++
	post.MediaFiles = append(post.MediaFiles, *media)
	return nil
}

func (s *fakeBlogStore) DeleteMediaFile(_ context.Context, postID, mediaID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i, m := range post.MediaFiles {
		if m.ID == mediaID {
			post.MediaFiles = append(post.MediaFiles[:i], post.MediaFiles[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeBlogStore) Delete(_ context.Context, post *model.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, post.ID)
	return nil
}

func window(posts []model.BlogPost, limit, offset int) ([]model.BlogPost, int64, error) {
	total := int64(len(posts))
	if offset >= len(posts) {
		return []model.BlogPost{}, total, nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], total, nil
}

type fakeTagStore struct {
	mu     sync.Mutex
	nextID uint
	tags   map[string]*model.Tag
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{nextID: 1, tags: make(map[string]*model.Tag)}
}

func (s *fakeTagStore) FindByName(_ context.Context, name string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *tag
	return &copied, nil
}

func (s *fakeTagStore) FindAll(_ context.Context) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		out = append(out, *tag)
	}
	return out, nil
}

func (s *fakeTagStore) FindOrCreate(_ context.Context, names []string) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Tag, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		tag, ok := s.tags[name]
		if !ok {
			tag = &model.Tag{Name: name}
			tag.ID = s.nextID
			s.nextID++
			s.tags[name] = tag
		}
		out = append(out, *tag)
	}
	return out, nil
}

// fakeCache records cache traffic for assertions.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	c.hits++
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			c.deletes++
		}
	}
	return nil
}

type blogServiceFixture struct {
	service *BlogService
	posts   *fakeBlogStore
	tags    *fakeTagStore
	users   *fakeUserStore
	cache   *fakeCache
}

// newBlogServiceFixture seeds two users so caller IDs 1 and 2 resolve.
func newBlogServiceFixture() *blogServiceFixture {
	posts := newFakeBlogStore()
	tags := newFakeTagStore()
	cache := newFakeCache()

	users := newFakeUserStore()
	users.Create(context.Background(), &model.User{Username: "author", Authority: "Write"})
	users.Create(context.Background(), &model.User{Username: "stranger", Authority: "Write"})

	svc := NewBlogService(posts, tags, users, cache, config.CacheConfig{Enabled: true, PostTTL: time.Minute})
	return &blogServiceFixture{service: svc, posts: posts, tags: tags, users: users, cache: cache}
}

func (f *blogServiceFixture) createPost(t *testing.T, ownerID uint, title string, tags ...string) *dto.BlogPostResponse {
	t.Helper()

	req := &dto.BlogPostRequest{Title: title, Content: "content of " + title}
	for _, tag := range tags {
		req.Tags = append(req.Tags, dto.TagRequest{Name: tag})
	}

	post, err := f.service.CreatePost(context.Background(), ownerID, req)
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}

func defaultPage() constants.PaginationParams {
	return constants.PaginationParams{Page: 1, Size: 10, Offset: 0}
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	f := newBlogServiceFixture()
	f.createPost(t, 1, "First Post")

	_, err := f.service.CreatePost(context.Background(), 2, &dto.BlogPostRequest{
		Title:   "First Post",
		Content: "different body",
	})
	if !errors.Is(err, apperrors.ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
}

func TestGetPostNotFound(t *testing.T) {
	f := newBlogServiceFixture()

	if _, err := f.service.GetPost(context.Background(), 99); !errors.Is(err, apperrors.ErrPostNotFound) {
		t.Fatalf("err = %v, want ErrPostNotFound", err)
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	f := newBlogServiceFixture()
	post := f.createPost(t, 1, "Owned Post")

	req := &dto.BlogPostRequest{Title: "Renamed", Content: "new body"}

	// A stranger with Write authority is rejected.
	if _, err := f.service.UpdatePost(context.Background(), 2, "Write", post.ID, req); !errors.Is(err, apperrors.ErrNotPostOwner) {
		t.Fatalf("stranger err = %v, want ErrNotPostOwner", err)
	}

	// The owner may update.
	updated, err := f.service.UpdatePost(context.Background(), 1, "Write", post.ID, req)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("title = %q after update", updated.Title)
	}

	// An admin may update someone else's post.
	req2 := &dto.BlogPostRequest{Title: "Admin Renamed", Content: "admin body"}
	if _, err := f.service.UpdatePost(context.Background(), 2, "Admin", post.ID, req2); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeletePostOwnership(t *testing.T) {
	f := newBlogServiceFixture()
	post := f.createPost(t, 1, "Doomed Post")

	if err := f.service.DeletePost(context.Background(), 2, "Write", post.ID); !errors.Is(err, apperrors.ErrNotPostOwner) {
		t.Fatalf("stranger err = %v, want ErrNotPostOwner", err)
	}

	if err := f.service.DeletePost(context.Background(), 1, "Write", post.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	if _, err := f.service.GetPost(context.Background(), post.ID); !errors.Is(err, apperrors.ErrPostNotFound) {
		t.Fatal("post still readable after delete")
	}
}

func TestListPostsUsesCache(t *testing.T) {
	f := newBlogServiceFixture()
	f.createPost(t, 1, "Cached Post")

	// First read populates the cache, second read hits it.
	if _, _, err := f.service.ListPosts(context.Background(), defaultPage()); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if _, _, err := f.service.ListPosts(context.Background(), defaultPage()); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if f.cache.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", f.cache.hits)
	}

	// A write invalidates the cached listings.
	f.createPost(t, 1, "Another Post")
	if f.cache.deletes == 0 {
		t.Fatal("write did not invalidate the listing cache")
	}

	posts, total, err := f.service.ListPosts(context.Background(), defaultPage())
	if err != nil {
		t.Fatalf("list after write: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("total = %d, len = %d after second post", total, len(posts))
	}
}

func TestListPostSummariesTruncatesContent(t *testing.T) {
	f := newBlogServiceFixture()

	long := strings.Repeat("a", summaryRuneLimit+10)
	if _, err := f.service.CreatePost(context.Background(), 1, &dto.BlogPostRequest{
		Title:   "Long Post",
		Content: long,
	}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	summaries, total, err := f.service.ListPostSummaries(context.Background(), defaultPage())
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if total != 1 || len(summaries) != 1 {
		t.Fatalf("total = %d, len = %d", total, len(summaries))
	}
	if want := long[:summaryRuneLimit] + "..."; summaries[0].Summary != want {
		t.Fatalf("summary = %q, want %d chars plus ellipsis", summaries[0].Summary, summaryRuneLimit)
	}

	// The full listing keeps complete bodies.
	posts, _, err := f.service.ListPosts(context.Background(), defaultPage())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if posts[0].Content != long {
		t.Fatal("full listing truncated the content")
	}
}

func TestListPostsByUserUnknownUser(t *testing.T) {
	f := newBlogServiceFixture()
	f.createPost(t, 1, "Authored Post")

	posts, total, err := f.service.ListPostsByUser(context.Background(), 1, defaultPage())
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if total != 1 || len(posts) != 1 {
		t.Fatalf("total = %d, len = %d", total, len(posts))
	}

	if _, _, err := f.service.ListPostsByUser(context.Background(), 99, defaultPage()); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}
}

func TestTagAttachDetach(t *testing.T) {
	f := newBlogServiceFixture()
	post := f.createPost(t, 1, "Tagged Post")
	ctx := context.Background()

	// Strangers cannot touch the tag set.
	if _, err := f.service.AddTagByName(ctx, 2, "Write", post.ID, "golang"); !errors.Is(err, apperrors.ErrNotPostOwner) {
		t.Fatalf("stranger err = %v, want ErrNotPostOwner", err)
	}

	updated, err := f.service.AddTag(ctx, 1, "Write", post.ID, &dto.TagRequest{Name: "golang"})
	if err != nil {
		t.Fatalf("add tag: %v", err)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Name != "golang" {
		t.Fatalf("tags after add: %+v", updated.Tags)
	}

	updated, err = f.service.AddTagByName(ctx, 1, "Write", post.ID, "testing")
	if err != nil {
		t.Fatalf("add tag by name: %v", err)
	}
	if len(updated.Tags) != 2 {
		t.Fatalf("tags after second add: %+v", updated.Tags)
	}

	updated, err = f.service.RemoveTag(ctx, 1, "Write", post.ID, "golang")
	if err != nil {
		t.Fatalf("remove tag: %v", err)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Name != "testing" {
		t.Fatalf("tags after remove: %+v", updated.Tags)
	}

	// Removing an absent tag is a no-op.
	updated, err = f.service.RemoveTag(ctx, 1, "Write", post.ID, "golang")
	if err != nil {
		t.Fatalf("remove absent tag: %v", err)
	}
	if len(updated.Tags) != 1 {
		t.Fatalf("tags after no-op remove: %+v", updated.Tags)
	}

	// The tag row itself survives detachment.
	if _, err := f.tags.FindByName(ctx, "golang"); err != nil {
		t.Fatalf("detached tag row gone: %v", err)
	}
}

func TestListPostsByTag(t *testing.T) {
	f := newBlogServiceFixture()
	f.createPost(t, 1, "Go Post", "golang")
	f.createPost(t, 1, "Cooking Post", "food")

	posts, total, err := f.service.ListPostsByTag(context.Background(), "golang", defaultPage())
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if total != 1 || len(posts) != 1 || posts[0].Title != "Go Post" {
		t.Fatalf("unexpected listing: total=%d posts=%+v", total, posts)
	}

	if _, _, err := f.service.ListPostsByTag(context.Background(), "missing", defaultPage()); !errors.Is(err, apperrors.ErrTagNotFound) {
		t.Fatalf("unknown tag err = %v, want ErrTagNotFound", err)
	}
}

func TestSearchPosts(t *testing.T) {
	f := newBlogServiceFixture()
	f.createPost(t, 1, "Concurrency Patterns", "golang")
	f.createPost(t, 1, "Sourdough Basics", "baking")

	posts, total, err := f.service.SearchPosts(context.Background(), "concurrency", defaultPage())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || posts[0].Title != "Concurrency Patterns" {
		t.Fatalf("unexpected search result: total=%d posts=%+v", total, posts)
	}

	// Tag names are searched too.
	posts, _, err = f.service.SearchPosts(context.Background(), "baking", defaultPage())
	if err != nil {
		t.Fatalf("tag search: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Sourdough Basics" {
		t.Fatalf("tag search result: %+v", posts)
	}
}

func TestMediaLifecycle(t *testing.T) {
	f := newBlogServiceFixture()
	post := f.createPost(t, 1, "Media Post")
	ctx := context.Background()

	media, err := f.service.AddMedia(ctx, 1, "Write", post.ID, &dto.MediaFileRequest{
		URL:       "https://cdn.example.com/pic.jpg",
		MediaType: model.MediaTypeImage,
		Width:     800,
		Height:    600,
	})
	if err != nil {
		t.Fatalf("add media: %v", err)
	}

	// Strangers cannot manage media on someone else's post.
	if _, err := f.service.AddMedia(ctx, 2, "Write", post.ID, &dto.MediaFileRequest{
		URL:       "https://cdn.example.com/other.jpg",
		MediaType: model.MediaTypeImage,
	}); !errors.Is(err, apperrors.ErrNotPostOwner) {
		t.Fatalf("stranger add err = %v, want ErrNotPostOwner", err)
	}

	if err := f.service.DeleteMedia(ctx, 1, "Write", post.ID, media.ID); err != nil {
		t.Fatalf("delete media: %v", err)
	}

	if err := f.service.DeleteMedia(ctx, 1, "Write", post.ID, media.ID); !errors.Is(err, apperrors.ErrMediaNotFound) {
		t.Fatalf("second delete err = %v, want ErrMediaNotFound", err)
	}
}

func TestSummarizeTruncatesLongContent(t *testing.T) {
	short := "short content"
	if got := summarize(short); got != short {
		t.Fatalf("short content changed: %q", got)
	}

	long := strings.Repeat("x", summaryRuneLimit+50)
	got := summarize(long)
	if len([]rune(got)) != summaryRuneLimit+3 {
		t.Fatalf("summary length = %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("summary %q does not end with ellipsis", got)
	}
}
