package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/kawase/internal/model"
)

// MemoryUserRepo はプロセス内メモリ上のUserRepository実装。
// ユーザー一覧とusernameインデックスをmutexで保護し、
// IDはリポジトリ生成時から単調増加で採番する（再利用しない）。
// プロセス再起動で全データは消える。
type MemoryUserRepo struct {
	mu       sync.RWMutex
	byID     map[int64]model.User
	idByName map[string]int64
	nextID   int64
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:     make(map[int64]model.User),
		idByName: make(map[string]int64),
		nextID:   1,
	}
}

// Create はユーザーを作成し、採番したIDをuser.IDに設定する。
// usernameの一致は大文字小文字を区別する完全一致で判定する。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.idByName[user.Username]; exists {
		return ErrDuplicateUsername
	}

	user.ID = r.nextID
	r.nextID++

	r.byID[user.ID] = *user
	r.idByName[user.Username] = user.ID

	return nil
}

// FindByUsername はusernameでユーザーを検索する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idByName[username]
	if !ok {
		return nil, nil
	}

	user := r.byID[id]
	return &user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}

	return &user, nil
}

// Count は登録済みユーザー数を返す。テストおよびメトリクス用。
func (r *MemoryUserRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// MemoryHistoryRepo はプロセス内メモリ上のHistoryRepository実装。
// ユーザーIDごとのパーティションをmutexで保護する。
// パーティションは最初のレコード追加時に暗黙に作成される。
type MemoryHistoryRepo struct {
	mu     sync.RWMutex
	byUser map[int64][]model.History
}

// NewMemoryHistoryRepo はMemoryHistoryRepoを生成する。
func NewMemoryHistoryRepo() *MemoryHistoryRepo {
	return &MemoryHistoryRepo{
		byUser: make(map[int64][]model.History),
	}
}

// ListByUserID は指定ユーザーの履歴を作成順で返す。履歴がない場合は空スライスを返す。
func (r *MemoryHistoryRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.byUser[userID]
	result := make([]*model.History, 0, len(records))
	for i := range records {
		record := records[i]
		result = append(result, &record)
	}

	return result, nil
}

// Create は履歴レコードをユーザーのパーティション末尾に追加する。
func (r *MemoryHistoryRepo) Create(ctx context.Context, record *model.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byUser[record.UserID] = append(r.byUser[record.UserID], *record)
	return nil
}

// DeleteByID は指定ユーザーのパーティションから履歴レコードを削除する。
// 他ユーザーのパーティションに属するレコードは見えないため、
// IDが実在してもユーザーが異なればErrHistoryNotFoundを返す。
func (r *MemoryHistoryRepo) DeleteByID(ctx context.Context, userID int64, historyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.byUser[userID]
	for i := range records {
		if records[i].ID == historyID {
			r.byUser[userID] = append(records[:i], records[i+1:]...)
			return nil
		}
	}

	return ErrHistoryNotFound
}

// compile-time interface checks
var _ UserRepository = (*MemoryUserRepo)(nil)
var _ HistoryRepository = (*MemoryHistoryRepo)(nil)
