// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/kawase/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、単調増加のIDを採番してuser.IDに設定する。
	// usernameが既に存在する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByUsername はusernameでユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// HistoryRepository は換算履歴の永続化インターフェース。
// レコードはユーザーごとのパーティションに分かれ、追加と削除のみが行われる。
type HistoryRepository interface {
	// ListByUserID は指定ユーザーの履歴を作成順で返す。履歴がない場合は空スライスを返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.History, error)

	// Create は履歴レコードを追加する。
	Create(ctx context.Context, record *model.History) error

	// DeleteByID は指定ユーザーのパーティションから履歴レコードを削除する。
	// レコードが存在しない場合はErrHistoryNotFoundを返す。
	DeleteByID(ctx context.Context, userID int64, historyID string) error
}
