// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/usercrud/internal/model"
	"github.com/hitoshi/usercrud/internal/repository"
)

// MetricsRecorder はストア操作の結果を記録するインターフェース。
// metrics.Collectorが実装する。
type MetricsRecorder interface {
	RecordStoreOperation(op string, err error)
	SetUserCount(n int)
}

// Service はユーザー管理のサービス層。
// 入力検証とリポジトリ結果の解釈を担い、状態は持たない。
type Service struct {
	repo    repository.UserRepository
	metrics MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewService(repo repository.UserRepository, metrics MetricsRecorder) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

// Create はユーザーを作成し、採番済みのユーザーを返す。
// 姓名のいずれかが空の場合はストアに触れずに検証エラーを返す。
// 失敗した書き込みは再試行しない。
func (s *Service) Create(ctx context.Context, firstName, lastName string) (*model.User, error) {
	if err := model.ValidateNames(firstName, lastName); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, firstName, lastName)
	s.record("create", err)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "user created", slog.Int64("user_id", id))

	return &model.User{ID: id, FirstName: firstName, LastName: lastName}, nil
}

// Get は指定IDのユーザーを返す。存在しない場合はmodel.ErrUserNotFoundを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("user %d: %w", id, model.ErrUserNotFound)
	}

	user, err := s.repo.FindByID(ctx, id)
	s.record("find", err)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, model.ErrUserNotFound)
	}

	return user, nil
}

// List は全ユーザーをID昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	s.record("list", err)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SetUserCount(len(users))
	}

	return users, nil
}

// Update は指定IDのユーザーの姓名を置き換える。
// ちょうど1行が更新された場合のみtrueを返す。
func (s *Service) Update(ctx context.Context, id int64, firstName, lastName string) (bool, error) {
	if err := model.ValidateNames(firstName, lastName); err != nil {
		return false, err
	}
	if id <= 0 {
		return false, nil
	}

	updated, err := s.repo.Update(ctx, id, firstName, lastName)
	s.record("update", err)
	if err != nil {
		return false, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	if updated {
		slog.InfoContext(ctx, "user updated", slog.Int64("user_id", id))
	}

	return updated, nil
}

// Delete は指定IDのユーザーを削除する。
// ちょうど1行が削除された場合のみtrueを返す。
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	deleted, err := s.repo.Delete(ctx, id)
	s.record("delete", err)
	if err != nil {
		return false, fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	if deleted {
		slog.InfoContext(ctx, "user deleted", slog.Int64("user_id", id))
	}

	return deleted, nil
}

func (s *Service) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(op, err)
	}
}
