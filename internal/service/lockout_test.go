package service

import (
	"context"
	"testing"
	"time"

	"github.com/quillbase/blogserver/config"
	"github.com/quillbase/blogserver/internal/model"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		MaxLoginAttempts: 5,
		LockDuration:     10 * time.Minute,
	}
}

func seedUser(t *testing.T, store *fakeUserStore, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:    username,
		Password:    "hashed:secret123",
		DisplayName: "Test User",
		Authority:   "Write",
	}
	if err := store.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestRecordFailureIncrementsAttempts(t *testing.T) {
	store := newFakeUserStore()
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	manager := NewLockoutManager(store, clock, testAuthConfig())

	user := seedUser(t, store, "alice")
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		if err := manager.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure #%d: %v", i, err)
		}

		stored := store.get(user.ID)
		if stored.LoginAttempts != i {
			t.Fatalf("after %d failures, attempts = %d", i, stored.LoginAttempts)
		}
		if stored.AccountLocked {
			t.Fatalf("account locked after only %d failures", i)
		}
	}
}

func TestRecordFailureLocksAtLimit(t *testing.T) {
	store := newFakeUserStore()
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	manager := NewLockoutManager(store, clock, testAuthConfig())

	user := seedUser(t, store, "alice")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := manager.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	stored := store.get(user.ID)
	if !stored.AccountLocked {
		t.Fatal("account not locked after reaching the attempt limit")
	}
	if stored.AutoLockedAt == nil {
		t.Fatal("lock timestamp not recorded")
	}
	if !stored.AutoLockedAt.Equal(clock.Now()) {
		t.Fatalf("lock timestamp = %v, want %v", stored.AutoLockedAt, clock.Now())
	}
}

func TestRecordFailureUnknownUserIsNoOp(t *testing.T) {
	store := newFakeUserStore()
	clock := newFakeClock(time.Now())
	manager := NewLockoutManager(store, clock, testAuthConfig())

	if err := manager.RecordFailure(context.Background(), "nobody"); err != nil {
		t.Fatalf("RecordFailure for unknown user: %v", err)
	}
}

func TestTryAutoUnlock(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lockedAt *time.Time
		locked   bool
		advance  time.Duration
		want     bool
	}{
		{
			name:   "not locked",
			locked: false,
			want:   true,
		},
		{
			name:     "cooldown not elapsed",
			locked:   true,
			lockedAt: &start,
			advance:  9 * time.Minute,
			want:     false,
		},
		{
			name:     "cooldown elapsed",
			locked:   true,
			lockedAt: &start,
			advance:  10 * time.Minute,
			want:     true,
		},
		{
			name:   "locked without timestamp stays locked",
			locked: true,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeUserStore()
			clock := newFakeClock(start)
			manager := NewLockoutManager(store, clock, testAuthConfig())

			user := seedUser(t, store, "alice")
			user.AccountLocked = tt.locked
			user.AutoLockedAt = tt.lockedAt
			user.LoginAttempts = 5
			if err := store.Save(context.Background(), user); err != nil {
				t.Fatalf("save: %v", err)
			}

			clock.Advance(tt.advance)

			loaded, _ := store.FindByID(context.Background(), user.ID)
			got, err := manager.TryAutoUnlock(context.Background(), loaded)
			if err != nil {
				t.Fatalf("TryAutoUnlock: %v", err)
			}
			if got != tt.want {
				t.Fatalf("TryAutoUnlock = %v, want %v", got, tt.want)
			}

			if tt.locked && tt.want {
				stored := store.get(user.ID)
				if stored.AccountLocked || stored.LoginAttempts != 0 || stored.AutoLockedAt != nil {
					t.Fatalf("unlock did not reset state: %+v", stored)
				}
			}
		})
	}
}

func TestResetOnSuccessClearsCounter(t *testing.T) {
	store := newFakeUserStore()
	clock := newFakeClock(time.Now())
	manager := NewLockoutManager(store, clock, testAuthConfig())

	user := seedUser(t, store, "alice")
	user.LoginAttempts = 3
	if err := store.Save(context.Background(), user); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, _ := store.FindByID(context.Background(), user.ID)
	if err := manager.ResetOnSuccess(context.Background(), loaded); err != nil {
		t.Fatalf("ResetOnSuccess: %v", err)
	}

	stored := store.get(user.ID)
	if stored.LoginAttempts != 0 {
		t.Fatalf("attempts = %d after reset", stored.LoginAttempts)
	}
}
