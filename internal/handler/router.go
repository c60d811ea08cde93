package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kawase/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	Metrics           MetricsRecorder
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// サービス
	CredentialService CredentialServiceInterface
	FederationService FederationServiceInterface
	HistoryService    HistoryServiceInterface
}

// MetricsRecorder はルーターが必要とするメトリクス記録のインターフェース。
type MetricsRecorder interface {
	middleware.TokenRejectionRecorder
	middleware.HTTPStatusRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS → SecurityHeaders
//
// その上で、登録・ログイン系ルートには登録専用レート制限（IPキー）、
// 認証必須ルートにはBearerトークン検証 → 一般レート制限（ユーザーIDキー）を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.CredentialService, deps.FederationService)
	historyHandler := NewHistoryHandler(deps.HistoryService)

	// ヘルスチェック（レート制限の対象外）
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- 認証不要のルート ---
	// 資格情報を扱うため、IPキーの登録専用レート制限を適用する
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.CredentialMiddleware())

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/auth/google", authHandler.GoogleLogin)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Bearer検証 → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.Metrics))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		// 換算履歴
		r.Route("/main", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Post("/", historyHandler.Create)
			r.Delete("/{historyId}", historyHandler.Delete)
		})
	})

	return r
}
