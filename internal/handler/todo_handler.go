package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	// Add はTodoを作成し、サーバー側タイムスタンプ込みの行を返す。
	Add(ctx context.Context, ownerID, title, description string) (*model.Todo, error)
	// List は指定ユーザーのTodoを作成日時の新しい順で返す。
	List(ctx context.Context, ownerID string) ([]*model.Todo, error)
	// Update はidと所有者の両方が一致する行を上書きする。
	Update(ctx context.Context, id, ownerID, title, description string) (*model.Todo, error)
	// Delete はidと所有者の両方が一致する行を削除する。
	Delete(ctx context.Context, id, ownerID string) error
}

// TodoMetricsRecorder はTodo操作のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type TodoMetricsRecorder interface {
	RecordTodoOperation(operation string)
}

// TodoHandler はTodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
	metrics TodoMetricsRecorder // nilの場合は記録しない
}

// NewTodoHandler はTodoHandlerを生成する。metricsはnilでもよい。
func NewTodoHandler(service TodoServiceInterface, metrics TodoMetricsRecorder) *TodoHandler {
	return &TodoHandler{
		service: service,
		metrics: metrics,
	}
}

// recordOperation は操作成功時のメトリクスを記録する。
func (h *TodoHandler) recordOperation(operation string) {
	if h.metrics != nil {
		h.metrics.RecordTodoOperation(operation)
	}
}

// todoRequest はTodo作成・更新リクエストのボディ。
type todoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// todoResponse はTodo情報のAPIレスポンス。
type todoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// newTodoResponse はドメインモデルをAPIレスポンスに変換する。
// user_idは所有者本人にしか返らないため含めない。
func newTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Create はTodoを作成する。
// POST /api/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteActionError(w, model.NewValidationError("Invalid request body."))
		return
	}

	created, err := h.service.Add(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.recordOperation("add")
	middleware.WriteActionSuccess(w, http.StatusCreated, "Todo added successfully.", newTodoResponse(created))
}

// List はユーザーのTodo一覧を作成日時の新しい順で返す。
// GET /api/todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	todos, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// 空でもnullではなく[]を返す
	resp := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		resp = append(resp, newTodoResponse(t))
	}

	h.recordOperation("list")
	middleware.WriteActionSuccess(w, http.StatusOK, "OK", resp)
}

// Update はTodoのtitle/descriptionを上書きする。
// PUT /api/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	todoID := chi.URLParam(r, "id")

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteActionError(w, model.NewValidationError("Invalid request body."))
		return
	}

	updated, err := h.service.Update(r.Context(), todoID, userID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.recordOperation("update")
	middleware.WriteActionSuccess(w, http.StatusOK, "Todo updated successfully.", newTodoResponse(updated))
}

// Delete はTodoを削除する。
// DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	todoID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), todoID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	h.recordOperation("delete")
	middleware.WriteActionSuccess(w, http.StatusOK, "Todo deleted successfully.", nil)
}
