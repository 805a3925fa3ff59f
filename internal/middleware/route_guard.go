package middleware

import (
	"log/slog"
	"net/http"
)

// ガード対象のページパス。
const (
	LoginPath      = "/login"
	SignupPath     = "/signup"
	CreateTodoPath = "/create-todo"
)

// NewRouteGuardMiddleware はページ遷移のルーティングガードを返す。
//
// 遷移表（リクエストごとに1回評価、リトライなし）:
//
//	認証済み   + /login または /signup → /create-todo へリダイレクト
//	未認証     + /create-todo          → /login へリダイレクト
//	それ以外                           → そのまま通過
//
// セッション解決でエラーが起きた場合はフェイルクローズドで/loginへ
// リダイレクトする（/login自身への無限リダイレクトは避けて通過させる）。
// Cookieが無いことはエラーではなく「未認証」として扱う。
// 認証済みの場合はユーザーIDをリクエストコンテキストに注入して通過させる。
func NewRouteGuardMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path != LoginPath && path != SignupPath && path != CreateTodoPath {
				next.ServeHTTP(w, r)
				return
			}

			authenticated := false
			userID := ""

			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
				if err != nil {
					// フェイルクローズド: 解決不能なセッションはログインへ落とす
					slog.Error("route guard failed to resolve session",
						slog.String("path", path),
						slog.String("error", err.Error()),
					)
					if path != LoginPath {
						http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
						return
					}
					next.ServeHTTP(w, r)
					return
				}
				if session != nil {
					authenticated = true
					userID = session.UserID
				}
			}

			if authenticated && (path == LoginPath || path == SignupPath) {
				http.Redirect(w, r, CreateTodoPath, http.StatusTemporaryRedirect)
				return
			}

			if !authenticated && path == CreateTodoPath {
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
				return
			}

			if authenticated {
				r = r.WithContext(ContextWithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
