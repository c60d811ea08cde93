package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kawase/internal/history"
	"github.com/hitoshi/kawase/internal/middleware"
	"github.com/hitoshi/kawase/internal/model"
)

// HistoryServiceInterface は履歴ハンドラーが必要とするサービスインターフェース。
type HistoryServiceInterface interface {
	// List は指定ユーザーの履歴を作成順で返す。
	List(ctx context.Context, userID int64) ([]*model.History, error)
	// Append は履歴レコードを追加する。
	Append(ctx context.Context, userID int64, input history.AppendInput) (*model.History, error)
	// Delete は指定ユーザーの履歴レコードを削除する。
	Delete(ctx context.Context, userID int64, historyID string) error
}

// HistoryHandler は換算履歴のHTTPハンドラー。
type HistoryHandler struct {
	histories HistoryServiceInterface
}

// NewHistoryHandler はHistoryHandlerを生成する。
func NewHistoryHandler(histories HistoryServiceInterface) *HistoryHandler {
	return &HistoryHandler{histories: histories}
}

// appendHistoryRequest は履歴追加リクエストのボディ。
// amountとresultは欠落と0値を区別するためポインタで受け取る。
type appendHistoryRequest struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Amount *float64 `json:"amount"`
	Result *float64 `json:"result"`
}

// historyPayload は履歴レコードのレスポンス表現。
type historyPayload struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Result    float64 `json:"result"`
	CreatedAt string  `json:"createdAt"`
}

// listHistoryResponse は履歴一覧のレスポンス。
type listHistoryResponse struct {
	History []historyPayload `json:"history"`
}

// toHistoryPayload はドメインモデルをレスポンス表現に変換する。
func toHistoryPayload(record *model.History) historyPayload {
	return historyPayload{
		ID:        record.ID,
		From:      record.From,
		To:        record.To,
		Amount:    record.Amount,
		Result:    record.Result,
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	}
}

// List は認証済みユーザーの履歴一覧を返す。
// GET /main
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	records, err := h.histories.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	payload := make([]historyPayload, 0, len(records))
	for _, record := range records {
		payload = append(payload, toHistoryPayload(record))
	}

	writeJSON(w, http.StatusOK, listHistoryResponse{History: payload})
}

// Create は履歴レコードを追加する。
// POST /main
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req appendHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	if _, err := h.histories.Append(r.Context(), userID, history.AppendInput{
		From:   req.From,
		To:     req.To,
		Amount: req.Amount,
		Result: req.Result,
	}); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Delete は履歴レコードを削除する。
// DELETE /main/{historyId}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	historyID := chi.URLParam(r, "historyId")

	if err := h.histories.Delete(r.Context(), userID, historyID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
