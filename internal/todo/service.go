// Package todo はTodo管理のドメインロジックを提供する。
package todo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
	"github.com/hitoshi/todoman/internal/security"
)

// タイトルと説明文の最大長。DB側には制約を置かずサービス層で検証する。
const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// Service はTodoのサービス層。
// 入力の検証・サニタイズと所有者スコープのCRUDを提供する。
type Service struct {
	todoRepo  repository.TodoRepository
	sanitizer security.TodoSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(todoRepo repository.TodoRepository, sanitizer security.TodoSanitizerService) *Service {
	return &Service{
		todoRepo:  todoRepo,
		sanitizer: sanitizer,
	}
}

// Add はTodoを作成し、サーバー側タイムスタンプ込みの行を返す。
func (s *Service) Add(ctx context.Context, ownerID, title, description string) (*model.Todo, error) {
	title, description, err := s.normalize(title, description)
	if err != nil {
		return nil, err
	}

	created, err := s.todoRepo.Create(ctx, &model.Todo{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		slog.Error("failed to add todo",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError("Failed to add todo")
	}

	return created, nil
}

// List は指定ユーザーのTodoを作成日時の新しい順で返す。
// 1件もない場合は空スライスを返す（エラーにはしない）。
func (s *Service) List(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	todos, err := s.todoRepo.ListByUserID(ctx, ownerID)
	if err != nil {
		slog.Error("failed to list todos",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError("Failed to fetch todos")
	}
	return todos, nil
}

// Update はtitle/descriptionを上書きしupdated_atを更新する。
// idとownerIDの両方が一致する行のみが対象。一致しない場合はTODO_NOT_FOUND。
func (s *Service) Update(ctx context.Context, id, ownerID, title, description string) (*model.Todo, error) {
	title, description, err := s.normalize(title, description)
	if err != nil {
		return nil, err
	}

	updated, err := s.todoRepo.Update(ctx, id, ownerID, title, description)
	if err != nil {
		slog.Error("failed to update todo",
			slog.String("todo_id", id),
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError("Failed to update todo")
	}
	if updated == nil {
		return nil, model.NewTodoNotFoundError(id)
	}

	return updated, nil
}

// Delete はidとownerIDの両方が一致する行を削除する。
// 一致しない場合はTODO_NOT_FOUND。
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	deleted, err := s.todoRepo.Delete(ctx, id, ownerID)
	if err != nil {
		slog.Error("failed to delete todo",
			slog.String("todo_id", id),
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return model.NewStoreError("Failed to delete todo")
	}
	if !deleted {
		return model.NewTodoNotFoundError(id)
	}

	return nil
}

// normalize は入力を検証・サニタイズする。
func (s *Service) normalize(title, description string) (string, string, error) {
	title = strings.TrimSpace(s.sanitizer.SanitizeTitle(title))
	description = strings.TrimSpace(s.sanitizer.SanitizeDescription(description))

	if title == "" {
		return "", "", model.NewValidationError("Title is required.")
	}
	if len(title) > maxTitleLength {
		return "", "", model.NewValidationError("Title is too long.")
	}
	if len(description) > maxDescriptionLength {
		return "", "", model.NewValidationError("Description is too long.")
	}

	return title, description, nil
}
