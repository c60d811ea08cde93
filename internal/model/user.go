// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// パスワード登録・Google連携ログインのどちらで作成されたかに関わらず、
// Usernameは全ユーザー間で一意となる。Google連携で作成されたユーザーは
// プロバイダーから取得したメールアドレスをUsernameとして使用する。
type User struct {
	ID          int64
	Username    string
	Password    string // Google連携のみで作成されたユーザーでは空文字列
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
}

// HasPassword はパスワードログインが可能なユーザーかどうかを返す。
func (u *User) HasPassword() bool {
	return u.Password != ""
}
