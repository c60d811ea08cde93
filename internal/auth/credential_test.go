package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/kawase/internal/model"
	"github.com/hitoshi/kawase/internal/repository"
	"github.com/hitoshi/kawase/internal/security"
)

func newCredentialService(users repository.UserRepository, collector *mockCollector) *CredentialService {
	return NewCredentialService(users, &mockTokenIssuer{}, security.NewProfileSanitizer(), collector)
}

func TestRegister_ThenLogin_Succeeds(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	collector := &mockCollector{}
	svc := newCredentialService(users, collector)

	err := svc.Register(context.Background(), RegisterInput{
		Username:    "alice",
		Password:    "password123",
		DisplayName: "Alice",
		AvatarURL:   "https://example.com/alice.png",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if collector.registrations != 1 {
		t.Errorf("registrations = %d, want 1", collector.registrations)
	}

	tokenStr, user, err := svc.Login(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tokenStr == "" {
		t.Error("expected non-empty token")
	}
	if user.ID == 0 {
		t.Error("expected assigned user ID")
	}
	if user.DisplayName != "Alice" {
		t.Errorf("displayName = %q, want %q", user.DisplayName, "Alice")
	}
	if collector.loginSuccesses != 1 {
		t.Errorf("loginSuccesses = %d, want 1", collector.loginSuccesses)
	}
}

func TestRegister_MissingFields_ReturnsValidationError(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	svc := newCredentialService(users, &mockCollector{})

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Password: "pw", DisplayName: "Name"}},
		{"missing password", RegisterInput{Username: "user", DisplayName: "Name"}},
		{"missing display name", RegisterInput{Username: "user", Password: "pw"}},
		{"all missing", RegisterInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Register(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMissingFields {
				t.Errorf("error = %v, want MISSING_FIELDS", err)
			}
		})
	}

	if users.Count() != 0 {
		t.Errorf("user count = %d, want 0", users.Count())
	}
}

func TestRegister_DuplicateUsername_LeavesStoreUnchanged(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	svc := newCredentialService(users, &mockCollector{})

	if err := svc.Register(context.Background(), RegisterInput{
		Username:    "bob",
		Password:    "first-password",
		DisplayName: "Bob the First",
	}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	err := svc.Register(context.Background(), RegisterInput{
		Username:    "bob",
		Password:    "second-password",
		DisplayName: "Bob the Second",
	})
	if err == nil {
		t.Fatal("expected duplicate username error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateUsername {
		t.Errorf("error = %v, want DUPLICATE_USERNAME", err)
	}

	// 既存ユーザーは変更されない
	if users.Count() != 1 {
		t.Errorf("user count = %d, want 1", users.Count())
	}
	if _, _, err := svc.Login(context.Background(), "bob", "first-password"); err != nil {
		t.Errorf("original credentials should still work: %v", err)
	}
}

func TestRegister_UsernameIsCaseSensitive(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	svc := newCredentialService(users, &mockCollector{})

	if err := svc.Register(context.Background(), RegisterInput{
		Username: "carol", Password: "pw1", DisplayName: "Carol",
	}); err != nil {
		t.Fatalf("Register(carol) error = %v", err)
	}

	// 大文字小文字が異なるusernameは別ユーザーとして登録できる
	if err := svc.Register(context.Background(), RegisterInput{
		Username: "Carol", Password: "pw2", DisplayName: "Carol Upper",
	}); err != nil {
		t.Errorf("Register(Carol) should succeed, got %v", err)
	}

	if users.Count() != 2 {
		t.Errorf("user count = %d, want 2", users.Count())
	}
}

func TestRegister_SanitizesDisplayName(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	svc := newCredentialService(users, &mockCollector{})

	if err := svc.Register(context.Background(), RegisterInput{
		Username:    "dave",
		Password:    "pw",
		DisplayName: "<b>Dave</b> ",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := users.FindByUsername(context.Background(), "dave")
	if err != nil || user == nil {
		t.Fatalf("FindByUsername() = %v, %v", user, err)
	}
	if user.DisplayName != "Dave" {
		t.Errorf("displayName = %q, want sanitized %q", user.DisplayName, "Dave")
	}
}

func TestLogin_FailureIsUniform(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	collector := &mockCollector{}
	svc := newCredentialService(users, collector)

	if err := svc.Register(context.Background(), RegisterInput{
		Username: "eve", Password: "correct-password", DisplayName: "Eve",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// 未知のusernameとパスワード不一致で同一のエラーが返ること
	_, _, errUnknown := svc.Login(context.Background(), "nobody", "whatever")
	_, _, errWrongPw := svc.Login(context.Background(), "eve", "wrong-password")

	if errUnknown == nil || errWrongPw == nil {
		t.Fatal("expected errors for both failure modes")
	}

	var apiErr1, apiErr2 *model.APIError
	if !errors.As(errUnknown, &apiErr1) || !errors.As(errWrongPw, &apiErr2) {
		t.Fatal("expected APIError for both failure modes")
	}
	if apiErr1.Code != model.ErrCodeInvalidCredentials || apiErr2.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("codes = %q / %q, want INVALID_CREDENTIALS for both", apiErr1.Code, apiErr2.Code)
	}
	if apiErr1.Message != apiErr2.Message {
		t.Error("failure messages must not distinguish unknown user from wrong password")
	}
	if collector.loginFailures != 2 {
		t.Errorf("loginFailures = %d, want 2", collector.loginFailures)
	}
}

func TestLogin_FederatedUserWithoutPassword_CannotPasswordLogin(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	svc := newCredentialService(users, &mockCollector{})

	// パスワードなしユーザー（Google連携で作成されたものに相当）
	if err := users.Create(context.Background(), &model.User{
		Username:    "federated@gmail.com",
		DisplayName: "Federated User",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 空パスワードでの照合も一致として扱われないこと
	_, _, err := svc.Login(context.Background(), "federated@gmail.com", "")
	if err == nil {
		t.Fatal("expected error for empty password")
	}

	_, _, err = svc.Login(context.Background(), "federated@gmail.com", "anything")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error = %v, want INVALID_CREDENTIALS", err)
	}
}

func TestProfile_ReturnsUser(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	svc := newCredentialService(users, &mockCollector{})

	if err := svc.Register(context.Background(), RegisterInput{
		Username: "frank", Password: "pw", DisplayName: "Frank",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored, err := users.FindByUsername(context.Background(), "frank")
	if err != nil || stored == nil {
		t.Fatalf("FindByUsername() = %v, %v", stored, err)
	}

	user, err := svc.Profile(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if user.Username != "frank" {
		t.Errorf("username = %q, want %q", user.Username, "frank")
	}
}

func TestProfile_UnknownUser_ReturnsNotFound(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	svc := newCredentialService(users, &mockCollector{})

	_, err := svc.Profile(context.Background(), 9999)
	if err == nil {
		t.Fatal("expected error for unknown user ID")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want USER_NOT_FOUND", err)
	}
}
