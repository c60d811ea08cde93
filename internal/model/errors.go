// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, federation, history, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidBody        = "INVALID_BODY"
	ErrCodeMissingFields      = "MISSING_FIELDS"
	ErrCodeMissingCode        = "MISSING_CODE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeDuplicateUsername  = "DUPLICATE_USERNAME"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeHistoryNotFound    = "HISTORY_NOT_FOUND"
	ErrCodeFederationExchange = "FEDERATION_EXCHANGE_FAILED"
	ErrCodeFederationProfile  = "FEDERATION_PROFILE_FAILED"
)

// NewInvalidBodyError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBody,
		Message:  "リクエストボディを解析できません。",
		Category: "validation",
		Action:   "JSON形式のリクエストボディを送信してください。",
	}
}

// NewMissingFieldsError は必須フィールド欠落エラーを生成する。
func NewMissingFieldsError(fields ...string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  fmt.Sprintf("必須フィールドが不足しています: %v", fields),
		Category: "validation",
		Action:   "すべての必須フィールドを入力してください。",
	}
}

// NewMissingCodeError は認可コード欠落エラーを生成する。
func NewMissingCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingCode,
		Message:  "認可コードが指定されていません。",
		Category: "validation",
		Action:   "Google認証をやり直してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー名の存在有無とパスワード不一致を区別せず、同一のエラーを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError はトークン認証失敗エラーを生成する。
// 失敗の内訳（欠落・形式不正・署名不正・期限切れ）はクライアントに開示しない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインして再度お試しください。",
	}
}

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "このユーザー名は既に使用されています。",
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewHistoryNotFoundError は履歴レコード未検出エラーを生成する。
func NewHistoryNotFoundError(historyID string) *APIError {
	return &APIError{
		Code:     ErrCodeHistoryNotFound,
		Message:  fmt.Sprintf("指定された履歴が見つかりません: %s", historyID),
		Category: "history",
		Action:   "履歴IDを確認してください。",
	}
}

// NewFederationExchangeError はトークン交換失敗エラーを生成する。
func NewFederationExchangeError() *APIError {
	return &APIError{
		Code:     ErrCodeFederationExchange,
		Message:  "Googleとのトークン交換に失敗しました。",
		Category: "federation",
		Action:   "しばらく待ってからGoogle認証をやり直してください。",
	}
}

// NewFederationProfileError はプロフィール取得失敗エラーを生成する。
func NewFederationProfileError() *APIError {
	return &APIError{
		Code:     ErrCodeFederationProfile,
		Message:  "Googleからのプロフィール取得に失敗しました。",
		Category: "federation",
		Action:   "しばらく待ってからGoogle認証をやり直してください。",
	}
}
