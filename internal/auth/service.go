// Package auth はパスワード認証とGoogle OAuth連携のビジネスロジックを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/kawase/internal/metrics"
	"github.com/hitoshi/kawase/internal/model"
	"github.com/hitoshi/kawase/internal/repository"
	"github.com/hitoshi/kawase/internal/security"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Picture        string
	Provider       string // "google" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// FederationService はGoogle連携ログインのビジネスロジックを提供する。
//
// 1回のログイン試行は前進のみのチェーンで処理される:
// コード受領 → トークン交換 → プロフィール取得 → ユーザー照合 → トークン発行。
// 交換・取得のいずれかで失敗した場合、ユーザーは作成されず
// トークンも発行されない。リトライとロールバックは行わない。
// ユーザーストアへのアクセスは外部呼び出しの完了後にのみ行う。
type FederationService struct {
	oauth     OAuthProvider
	users     repository.UserRepository
	tokens    TokenIssuer
	sanitizer security.ProfileSanitizerService
	collector metrics.MetricsCollector
}

// NewFederationService はFederationServiceを生成する。
func NewFederationService(
	oauth OAuthProvider,
	users repository.UserRepository,
	tokens TokenIssuer,
	sanitizer security.ProfileSanitizerService,
	collector metrics.MetricsCollector,
) *FederationService {
	return &FederationService{
		oauth:     oauth,
		users:     users,
		tokens:    tokens,
		sanitizer: sanitizer,
		collector: collector,
	}
}

// HandleGoogleLogin は認可コードによるGoogle連携ログインを処理し、
// セッショントークンと対象ユーザーを返す。
//
// ユーザー照合はusername == メールアドレスの検索・作成で行う。
// 未登録のメールアドレスの場合はパスワードなしユーザーを新規作成し、
// 既存ユーザーの場合はフィールドを一切上書きせずそのまま再利用する
// （繰り返しのGoogle連携ログインは冪等）。
func (s *FederationService) HandleGoogleLogin(ctx context.Context, code string) (string, *model.User, error) {
	if code == "" {
		return "", nil, model.NewMissingCodeError()
	}

	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	start := time.Now()
	info, err := s.oauth.ExchangeCode(ctx, code)
	s.collector.RecordFederationLatency(time.Since(start))
	if err != nil {
		stage := "exchange"
		apiErr := model.NewFederationExchangeError()
		if errors.Is(err, ErrProfileFetch) {
			stage = "profile"
			apiErr = model.NewFederationProfileError()
		}
		s.collector.RecordFederationFailure(stage)
		slog.Error("google federation failed",
			slog.String("stage", stage),
			slog.String("error", err.Error()),
		)
		return "", nil, apiErr
	}

	// 2. メールアドレスで既存ユーザーを検索
	user, err := s.users.FindByUsername(ctx, info.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	created := false
	if user == nil {
		// 3. 新規ユーザーを作成（パスワードなし）
		user = &model.User{
			Username:    info.Email,
			DisplayName: s.sanitizer.SanitizeDisplayName(info.Name),
			AvatarURL:   info.Picture,
			CreatedAt:   time.Now(),
		}

		if err := s.users.Create(ctx, user); err != nil {
			// 同一メールアドレスの並行ログインと競合した場合は
			// 作成済みのユーザーを引き直す
			if errors.Is(err, repository.ErrDuplicateUsername) {
				user, err = s.users.FindByUsername(ctx, info.Email)
				if err != nil || user == nil {
					return "", nil, fmt.Errorf("failed to resolve user after duplicate create: %w", err)
				}
			} else {
				return "", nil, fmt.Errorf("failed to create user: %w", err)
			}
		} else {
			created = true
		}
	}

	// 4. セッショントークンを発行
	tokenStr, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.collector.RecordFederationLogin(created)
	slog.Info("google login succeeded",
		slog.Int64("user_id", user.ID),
		slog.Bool("created", created),
	)

	return tokenStr, user, nil
}
