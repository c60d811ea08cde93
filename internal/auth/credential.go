package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/kawase/internal/metrics"
	"github.com/hitoshi/kawase/internal/model"
	"github.com/hitoshi/kawase/internal/repository"
	"github.com/hitoshi/kawase/internal/security"
)

// TokenIssuer はセッショントークン発行のインターフェース。
// token.Serviceの部分集合として定義する。
type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Username    string
	Password    string
	DisplayName string
	AvatarURL   string
}

// CredentialService はパスワードによる登録・ログインのビジネスロジックを提供する。
type CredentialService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	sanitizer security.ProfileSanitizerService
	collector metrics.MetricsCollector
}

// NewCredentialService はCredentialServiceを生成する。
func NewCredentialService(
	users repository.UserRepository,
	tokens TokenIssuer,
	sanitizer security.ProfileSanitizerService,
	collector metrics.MetricsCollector,
) *CredentialService {
	return &CredentialService{
		users:     users,
		tokens:    tokens,
		sanitizer: sanitizer,
		collector: collector,
	}
}

// Register は新規ユーザーを登録する。
// username・password・表示名のいずれかが空の場合は検証エラー、
// usernameが既に存在する場合は重複エラーを返す。
// usernameの一致判定は大文字小文字を区別する完全一致。
func (s *CredentialService) Register(ctx context.Context, input RegisterInput) error {
	var missing []string
	if input.Username == "" {
		missing = append(missing, "username")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if input.DisplayName == "" {
		missing = append(missing, "profile.name")
	}
	if len(missing) > 0 {
		return model.NewMissingFieldsError(missing...)
	}

	user := &model.User{
		Username:    input.Username,
		Password:    input.Password,
		DisplayName: s.sanitizer.SanitizeDisplayName(input.DisplayName),
		AvatarURL:   input.AvatarURL,
		CreatedAt:   time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.NewDuplicateUsernameError()
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.collector.RecordRegistration()
	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return nil
}

// Login はusernameとpasswordを照合し、成功時にセッショントークンを発行する。
// ユーザー名の存在有無とパスワード不一致はレスポンス上区別しない。
func (s *CredentialService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	if username == "" || password == "" {
		return "", nil, model.NewMissingFieldsError("username", "password")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.HasPassword() || !secureCompare(user.Password, password) {
		s.collector.RecordLoginFailure()
		slog.Warn("login failed", slog.String("username", username))
		return "", nil, model.NewInvalidCredentialsError()
	}

	tokenStr, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.collector.RecordLoginSuccess()
	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return tokenStr, user, nil
}

// Profile は認証済みユーザーのプロフィールを取得する。
// トークン発行後にユーザーが見つからない場合はUSER_NOT_FOUNDを返す。
func (s *CredentialService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// secureCompare は資格情報を一定時間で比較する。
// 比較時間から一致プレフィックス長が漏れることを防ぐ。
func secureCompare(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
