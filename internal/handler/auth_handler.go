// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/kawase/internal/auth"
	"github.com/hitoshi/kawase/internal/middleware"
	"github.com/hitoshi/kawase/internal/model"
)

// CredentialServiceInterface は認証ハンドラーが必要とするパスワード認証サービスインターフェース。
type CredentialServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, input auth.RegisterInput) error
	// Login は資格情報を照合し、セッショントークンとユーザーを返す。
	Login(ctx context.Context, username, password string) (string, *model.User, error)
	// Profile は認証済みユーザーのプロフィールを取得する。
	Profile(ctx context.Context, userID int64) (*model.User, error)
}

// FederationServiceInterface は認証ハンドラーが必要とするGoogle連携サービスインターフェース。
type FederationServiceInterface interface {
	// HandleGoogleLogin は認可コードによるログインを処理し、
	// セッショントークンとユーザーを返す。
	HandleGoogleLogin(ctx context.Context, code string) (string, *model.User, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	credentials CredentialServiceInterface
	federation  FederationServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(credentials CredentialServiceInterface, federation FederationServiceInterface) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		federation:  federation,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Profile  struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatarUrl"`
	} `json:"profile"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// googleLoginRequest はGoogle連携ログインリクエストのボディ。
// 認可コードのみを受け取る。クライアントID等のプロバイダー設定は
// サーバー側の設定からのみ供給される。
type googleLoginRequest struct {
	Code string `json:"code"`
}

// successResponse は成功のみを通知するレスポンス。
type successResponse struct {
	Success bool `json:"success"`
}

// userPayload はトークンレスポンスに含めるユーザー情報。
type userPayload struct {
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// tokenResponse はログイン成功時のレスポンス。
type tokenResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

// meResponse は現在のユーザー情報のレスポンス。
type meResponse struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// Register はユーザー登録を処理する。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	input := auth.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.Profile.Name,
		AvatarURL:   req.Profile.AvatarURL,
	}

	if err := h.credentials.Register(r.Context(), input); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Login はパスワードログインを処理する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	token, user, err := h.credentials.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token: token,
		User: userPayload{
			DisplayName: user.DisplayName,
			AvatarURL:   avatarURLOrNull(user),
		},
	})
}

// GoogleLogin はGoogle連携ログインを処理する。
// POST /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	token, user, err := h.federation.HandleGoogleLogin(r.Context(), req.Code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token: token,
		User: userPayload{
			DisplayName: user.DisplayName,
			AvatarURL:   avatarURLOrNull(user),
		},
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.credentials.Profile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   avatarURLOrNull(user),
	})
}

// avatarURLOrNull はアバターURLを返す。未設定の場合はJSONのnullとして出力される。
func avatarURLOrNull(user *model.User) *string {
	if user.AvatarURL == "" {
		return nil
	}
	url := user.AvatarURL
	return &url
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// mapAPIErrorToHTTPStatus はエラーコードをHTTPステータスコードに対応付ける。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidBody, model.ErrCodeMissingFields, model.ErrCodeMissingCode:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotFound, model.ErrCodeHistoryNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateUsername:
		return http.StatusConflict
	case model.ErrCodeFederationExchange, model.ErrCodeFederationProfile:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
