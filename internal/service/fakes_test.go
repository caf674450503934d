package service

import (
	"context"
	"sync"
	"time"

	"github.com/quillbase/blogserver/internal/model"
	"gorm.io/gorm"
)

// fakeClock lets tests control wall time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeUserStore keeps users in memory. Reads hand out copies so
// mutations only persist through Save, matching a real database.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[uint]*model.User)}
}

func (s *fakeUserStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) ExistsByID(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[id]
	return ok, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}

	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) Save(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) DeleteWithDependents(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, user.ID)
	return nil
}

// get returns the stored user without copying, for assertions.
func (s *fakeUserStore) get(id uint) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// fakeRefreshTokenStore enforces the one-token-per-user rule in memory.
type fakeRefreshTokenStore struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]*model.RefreshToken // keyed by user ID
	users  *fakeUserStore
}

func newFakeRefreshTokenStore(users *fakeUserStore) *fakeRefreshTokenStore {
	return &fakeRefreshTokenStore{nextID: 1, tokens: make(map[uint]*model.RefreshToken), users: users}
}

func (s *fakeRefreshTokenStore) FindByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.tokens {
		if record.Token == token {
			copied := *record
			if user := s.users.get(record.UserID); user != nil {
				copied.User = *user
			}
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeRefreshTokenStore) Create(_ context.Context, record *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[record.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}

	record.ID = s.nextID
	s.nextID++
	copied := *record
	s.tokens[record.UserID] = &copied
	return nil
}

func (s *fakeRefreshTokenStore) DeleteByUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, userID)
	return nil
}

func (s *fakeRefreshTokenStore) DeleteByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, record := range s.tokens {
		if record.Token == token {
			delete(s.tokens, userID)
			return nil
		}
	}
	return nil
}

func (s *fakeRefreshTokenStore) tokenFor(userID uint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tokens[userID]
	if !ok {
		return "", false
	}
	return record.Token, true
}

// flakyRefreshTokenStore fails Create with a duplicate-key error a set
// number of times before delegating, imitating a concurrent login that
// wins the insert race.
type flakyRefreshTokenStore struct {
	*fakeRefreshTokenStore
	failures int
}

func (s *flakyRefreshTokenStore) Create(ctx context.Context, record *model.RefreshToken) error {
	if s.failures > 0 {
		s.failures--
		return gorm.ErrDuplicatedKey
	}
	return s.fakeRefreshTokenStore.Create(ctx, record)
}

// plainHasher avoids bcrypt cost in tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(hash, password string) bool { return hash == "hashed:"+password }
