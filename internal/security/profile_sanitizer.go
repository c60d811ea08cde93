package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ProfileSanitizerService はプロフィール文字列のサニタイズ機能のインターフェースを定義する。
// 登録入力およびIdPプロフィール由来の表示名の保存前に使用される。
type ProfileSanitizerService interface {
	// SanitizeDisplayName は表示名からHTMLタグをすべて除去して返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeDisplayName(name string) string
}

// profileSanitizer はProfileSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type profileSanitizer struct {
	policy *bluemonday.Policy
}

// NewProfileSanitizer はProfileSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去する。
func NewProfileSanitizer() *profileSanitizer {
	return &profileSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeDisplayName は表示名からHTMLタグをすべて除去し、前後の空白を取り除く。
func (s *profileSanitizer) SanitizeDisplayName(name string) string {
	return strings.TrimSpace(s.policy.Sanitize(name))
}

// compile-time interface check
var _ ProfileSanitizerService = (*profileSanitizer)(nil)
