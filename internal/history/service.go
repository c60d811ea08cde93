// Package history は通貨換算履歴のドメインロジックを提供する。
//
// 履歴は認証コアの外側のコラボレーターであり、認証済みユーザーIDを
// パーティションキーとして使うだけで、コアの状態には一切触れない。
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kawase/internal/model"
	"github.com/hitoshi/kawase/internal/repository"
)

// AppendInput は履歴追加の入力。
// AmountとResultはフィールド欠落と0値を区別するためポインタで受け取る。
type AppendInput struct {
	From   string
	To     string
	Amount *float64
	Result *float64
}

// Service は換算履歴のサービス層。
type Service struct {
	records repository.HistoryRepository
}

// NewService はServiceを生成する。
func NewService(records repository.HistoryRepository) *Service {
	return &Service{records: records}
}

// List は指定ユーザーの履歴を作成順で返す。
func (s *Service) List(ctx context.Context, userID int64) ([]*model.History, error) {
	records, err := s.records.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}
	return records, nil
}

// Append は履歴レコードを追加する。必須フィールドが欠落している場合は検証エラーを返す。
func (s *Service) Append(ctx context.Context, userID int64, input AppendInput) (*model.History, error) {
	var missing []string
	if input.From == "" {
		missing = append(missing, "from")
	}
	if input.To == "" {
		missing = append(missing, "to")
	}
	if input.Amount == nil {
		missing = append(missing, "amount")
	}
	if input.Result == nil {
		missing = append(missing, "result")
	}
	if len(missing) > 0 {
		return nil, model.NewMissingFieldsError(missing...)
	}

	record := &model.History{
		ID:        uuid.New().String(),
		UserID:    userID,
		From:      input.From,
		To:        input.To,
		Amount:    *input.Amount,
		Result:    *input.Result,
		CreatedAt: time.Now(),
	}

	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create history: %w", err)
	}

	slog.Info("history appended",
		slog.Int64("user_id", userID),
		slog.String("history_id", record.ID),
	)

	return record, nil
}

// Delete は指定ユーザーのパーティションから履歴レコードを削除する。
// レコードが存在しない、または他ユーザーのレコードの場合はHISTORY_NOT_FOUNDを返す。
func (s *Service) Delete(ctx context.Context, userID int64, historyID string) error {
	if err := s.records.DeleteByID(ctx, userID, historyID); err != nil {
		if errors.Is(err, repository.ErrHistoryNotFound) {
			return model.NewHistoryNotFoundError(historyID)
		}
		return fmt.Errorf("failed to delete history: %w", err)
	}

	slog.Info("history deleted",
		slog.Int64("user_id", userID),
		slog.String("history_id", historyID),
	)

	return nil
}
