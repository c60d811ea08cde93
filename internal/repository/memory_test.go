package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hitoshi/kawase/internal/model"
)

func TestMemoryUserRepo_Create_AssignsMonotonicIDs(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	u1 := &model.User{Username: "alice", Password: "pw"}
	u2 := &model.User{Username: "bob", Password: "pw"}

	if err := repo.Create(ctx, u1); err != nil {
		t.Fatalf("Create(alice) error = %v", err)
	}
	if err := repo.Create(ctx, u2); err != nil {
		t.Fatalf("Create(bob) error = %v", err)
	}

	if u1.ID != 1 {
		t.Errorf("first ID = %d, want 1", u1.ID)
	}
	if u2.ID != 2 {
		t.Errorf("second ID = %d, want 2", u2.ID)
	}
}

func TestMemoryUserRepo_Create_DuplicateUsername(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{Username: "alice"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, &model.User{Username: "alice"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicateUsername", err)
	}
	if repo.Count() != 1 {
		t.Errorf("count = %d, want 1", repo.Count())
	}
}

func TestMemoryUserRepo_FindByUsername_AbsentReturnsNil(t *testing.T) {
	repo := NewMemoryUserRepo()

	user, err := repo.FindByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if user != nil {
		t.Errorf("user = %v, want nil for absent username", user)
	}
}

func TestMemoryUserRepo_FindByUsername_CaseSensitive(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{Username: "Alice"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if user != nil {
		t.Error("lookup must be case sensitive")
	}
}

func TestMemoryUserRepo_FindByID(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	created := &model.User{Username: "alice", DisplayName: "Alice"}
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Errorf("user = %v, want alice", user)
	}

	absent, err := repo.FindByID(ctx, 9999)
	if err != nil {
		t.Fatalf("FindByID(absent) error = %v", err)
	}
	if absent != nil {
		t.Error("expected nil for absent ID")
	}
}

func TestMemoryUserRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{Username: "alice", DisplayName: "Alice"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, _ := repo.FindByUsername(ctx, "alice")
	first.DisplayName = "Mutated"

	second, _ := repo.FindByUsername(ctx, "alice")
	if second.DisplayName != "Alice" {
		t.Errorf("displayName = %q, stored value must not be mutated via returned pointer", second.DisplayName)
	}
}

func TestMemoryUserRepo_ConcurrentCreate_UniqueIDs(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &model.User{Username: fmt.Sprintf("user-%d", i)}
			if err := repo.Create(ctx, u); err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}
			ids <- u.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID assigned: %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("unique IDs = %d, want %d", len(seen), n)
	}
}

func TestMemoryHistoryRepo_ListByUserID_EmptyPartition(t *testing.T) {
	repo := NewMemoryHistoryRepo()

	records, err := repo.ListByUserID(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByUserID() error = %v", err)
	}
	if records == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestMemoryHistoryRepo_Create_PreservesInsertionOrder(t *testing.T) {
	repo := NewMemoryHistoryRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, &model.History{
			ID:     fmt.Sprintf("rec-%d", i),
			UserID: 1,
			From:   "USD",
			To:     "JPY",
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	records, err := repo.ListByUserID(ctx, 1)
	if err != nil {
		t.Fatalf("ListByUserID() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for i, record := range records {
		want := fmt.Sprintf("rec-%d", i)
		if record.ID != want {
			t.Errorf("records[%d].ID = %q, want %q", i, record.ID, want)
		}
	}
}

func TestMemoryHistoryRepo_PartitionsAreIsolated(t *testing.T) {
	repo := NewMemoryHistoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.History{ID: "rec-a", UserID: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, &model.History{ID: "rec-b", UserID: 2}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	records1, _ := repo.ListByUserID(ctx, 1)
	records2, _ := repo.ListByUserID(ctx, 2)

	if len(records1) != 1 || records1[0].ID != "rec-a" {
		t.Errorf("user 1 records = %v, want [rec-a]", records1)
	}
	if len(records2) != 1 || records2[0].ID != "rec-b" {
		t.Errorf("user 2 records = %v, want [rec-b]", records2)
	}
}

func TestMemoryHistoryRepo_DeleteByID(t *testing.T) {
	repo := NewMemoryHistoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.History{ID: "rec-a", UserID: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.DeleteByID(ctx, 1, "rec-a"); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}

	records, _ := repo.ListByUserID(ctx, 1)
	if len(records) != 0 {
		t.Errorf("len = %d, want 0 after delete", len(records))
	}

	// 削除済みレコードの再削除はエラー
	if err := repo.DeleteByID(ctx, 1, "rec-a"); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("DeleteByID(deleted) error = %v, want ErrHistoryNotFound", err)
	}
}

func TestMemoryHistoryRepo_DeleteByID_OtherUsersRecordIsInvisible(t *testing.T) {
	repo := NewMemoryHistoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.History{ID: "rec-a", UserID: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 実在するIDでもユーザーが異なれば見えない
	err := repo.DeleteByID(ctx, 2, "rec-a")
	if !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("DeleteByID(other user) error = %v, want ErrHistoryNotFound", err)
	}

	records, _ := repo.ListByUserID(ctx, 1)
	if len(records) != 1 {
		t.Errorf("owner's record must remain, len = %d", len(records))
	}
}
