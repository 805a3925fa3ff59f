// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, name, email, password string) error
	SignIn(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	SignOut(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) *model.User
	ConfirmEmail(ctx context.Context, token string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthMetricsRecorder はサインアップ・ログインのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type AuthMetricsRecorder interface {
	RecordSignUpSuccess()
	RecordSignUpFailure(reason string)
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
}

// AuthHandler はサインアップ・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetricsRecorder // nilの場合は記録しない
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// signUpRequest はサインアップリクエストのボディ。
type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signInRequest はログインリクエストのボディ。
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignUp は新規ユーザーを登録し、確認メールを送信する。
// POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteActionError(w, model.NewValidationError("Invalid request body."))
		return
	}

	if err := h.service.SignUp(r.Context(), req.Name, req.Email, req.Password); err != nil {
		if h.metrics != nil {
			h.metrics.RecordSignUpFailure(failureReason(err))
		}
		writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSignUpSuccess()
	}
	middleware.WriteActionSuccess(w, http.StatusCreated,
		"Signup successful. Please check your email to confirm your address.", nil)
}

// Login は資格情報を検証し、セッションCookieを設定する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteActionError(w, model.NewValidationError("Invalid request body."))
		return
	}

	session, user, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure(failureReason(err))
		}
		writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	// セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.WriteActionSuccess(w, http.StatusOK, "Login successful.", userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
}

// Logout はセッションを破棄する。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		// セッションをDBから削除
		if logoutErr := h.service.SignOut(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.WriteActionSuccess(w, http.StatusOK, "Logged out.", nil)
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	user := h.service.CurrentUser(r.Context(), cookie.Value)
	if user == nil {
		middleware.WriteActionError(w, model.NewSessionResolutionError())
		return
	}

	middleware.WriteActionSuccess(w, http.StatusOK, "OK", userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
}

// Confirm は確認メールのリンクからトークンを検証する。
// GET /api/auth/confirm?token=xxx
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if err := h.service.ConfirmEmail(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}

	// 確認完了後はログインページへ誘導
	http.Redirect(w, r, h.config.BaseURL+"/login", http.StatusTemporaryRedirect)
}
