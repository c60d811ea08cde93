package model

import "time"

// History は通貨換算の履歴レコードを表す。
// ユーザーごとのパーティションに属し、追加と削除のみが行われる。
// 認証コアはこのレコードの内容を参照しない。
type History struct {
	ID        string
	UserID    int64
	From      string
	To        string
	Amount    float64
	Result    float64
	CreatedAt time.Time
}
