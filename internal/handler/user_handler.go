package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Profile は指定IDのディレクトリ行を返す。
	Profile(ctx context.Context, userID string) (*model.User, error)
	// Withdraw はユーザーの退会処理（全関連データ削除）を実行する。
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// Profile は現在のユーザーのプロフィールを返す。
// GET /api/users/me
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.WriteActionSuccess(w, http.StatusOK, "OK", userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
}

// Withdraw は退会処理を実行し、セッションCookieをクリアする。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.WriteActionSuccess(w, http.StatusOK, "Account deleted.", nil)
}
