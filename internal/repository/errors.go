package repository

import "errors"

// リポジトリ共通のエラー
var (
	// ErrDuplicateUsername は同名のusernameが既に存在することを示す。
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrHistoryNotFound は履歴レコードが見つからないことを示す。
	ErrHistoryNotFound = errors.New("history record not found")
)
