package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/todoman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	RequestTimeout    time.Duration
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// Todo
	TodoService TodoServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// メトリクス（nil可）
	AuthMetrics    AuthMetricsRecorder
	TodoMetrics    TodoMetricsRecorder
	HTTPMetrics    middleware.HTTPMetricsRecorder
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// グローバルミドルウェアの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → Timeout → CSRF
//
// ページ（/login, /signup, /create-todo）にはルーティングガードが付き、
// 認証APIにはIPベース、認証後APIにはユーザーベースのレート制限が付く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// --- グローバルミドルウェア ---
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewTimeoutMiddleware(deps.RequestTimeout))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.AuthMetrics)
	todoHandler := NewTodoHandler(deps.TodoService, deps.TodoMetrics)
	userHandler := NewUserHandler(deps.UserService)
	pageHandler := NewPageHandler()

	// --- 運用エンドポイント ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Handle("/static/*", NewStaticHandler())

	// --- ページ（ルーティングガード付き） ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRouteGuardMiddleware(deps.SessionFinder))

		r.Get(middleware.LoginPath, pageHandler.Login)
		r.Get(middleware.SignupPath, pageHandler.Signup)
		r.Get(middleware.CreateTodoPath, pageHandler.CreateTodo)
	})

	// --- 認証エンドポイント（未認証で到達可能、IPベースのレート制限） ---

	r.Route("/api/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/signup", authHandler.SignUp)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
		r.Get("/confirm", authHandler.Confirm)
	})

	// --- 認証が必要なAPI ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// Todo管理
		r.Route("/api/todos", func(r chi.Router) {
			r.Post("/", todoHandler.Create)
			r.Get("/", todoHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", todoHandler.Update)
				r.Delete("/", todoHandler.Delete)
			})
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", userHandler.Profile)
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
