// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/kawase/internal/model"
	"github.com/hitoshi/kawase/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
	userIDContextKey = contextKey("user_id")
	// usernameContextKey はリクエストコンテキストにusernameを格納するためのキー。
	usernameContextKey = contextKey("username")
)

// TokenVerifier はトークン検証のインターフェース。
// token.Serviceの部分集合として定義する。
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// TokenRejectionRecorder はトークン拒否メトリクス記録のインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type TokenRejectionRecorder interface {
	RecordTokenRejected(reason string)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証する
// ミドルウェアを返す。検証済みクレームのユーザーIDとusernameを
// リクエストコンテキストに注入する。
//
// ヘッダーは厳密に "Bearer <token>" の2トークン形式のみを受け付け、
// スキームは大文字小文字を区別する。拒否理由（欠落・スキーム不正・
// 形式不正・署名不正・期限切れ）はログとメトリクスでのみ区別し、
// クライアントには一律の401を返す。拒否されたリクエストは
// 後続のハンドラーに到達しない。
func NewAuthMiddleware(verifier TokenVerifier, recorder TokenRejectionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject(w, recorder, "missing", "missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				reject(w, recorder, "bad_scheme", "invalid Authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				reject(w, recorder, rejectionReason(err), err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, usernameContextKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// reject は一律の401レスポンスを返し、内部理由をログとメトリクスに記録する。
func reject(w http.ResponseWriter, recorder TokenRejectionRecorder, reason, detail string) {
	recorder.RecordTokenRejected(reason)
	slog.Warn("request rejected by auth gate",
		slog.String("reason", reason),
		slog.String("detail", detail),
	)
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// rejectionReason はトークン検証エラーをメトリクス用の理由ラベルに変換する。
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	if !ok || userID == 0 {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// UsernameFromContext はリクエストコンテキストからusernameを取得する。
func UsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameContextKey).(string)
	if !ok || username == "" {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

// ContextWithClaims はコンテキストにユーザーIDとusernameを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, userID int64, username string) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, usernameContextKey, username)
}
