// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// NewEgressClient は外部IdPエンドポイント呼び出し用のHTTPクライアントを生成する。
// safeurlライブラリにより、プライベートIP、ループバック、リンクローカル、
// メタデータIPへのリクエストが自動的にブロックされる。
// DNS再バインディング攻撃への対策も有効化される。
// トークン交換・プロフィール取得の各呼び出しはtimeoutで打ち切られる。
func NewEgressClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("https").
		SetAllowedPorts(443).
		Build()

	return safeurl.Client(config).Client
}
