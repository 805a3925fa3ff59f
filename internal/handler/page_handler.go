package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todoman/internal/middleware"
)

// ページテンプレート。フォーム送信はJSONでAPIへ投げるため、ここは骨格のみ。
const (
	loginPageTemplate = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>Login</title></head>
<body>
<h1>Login</h1>
<form id="login-form">
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Log in</button>
</form>
<p id="message"></p>
<p><a href="/signup">Sign up</a></p>
<script src="/static/auth.js"></script>
</body>
</html>`

	signupPageTemplate = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>Sign up</title></head>
<body>
<h1>Sign up</h1>
<form id="signup-form">
  <label>Name <input type="text" name="name"></label>
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" minlength="8" required></label>
  <button type="submit">Sign up</button>
</form>
<p id="message"></p>
<p><a href="/login">Log in</a></p>
<script src="/static/auth.js"></script>
</body>
</html>`

	createTodoPageTemplate = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>Todos</title></head>
<body>
<h1>Todos</h1>
<form id="todo-form">
  <label>Title <input type="text" name="title" maxlength="200" required></label>
  <label>Description <textarea name="description" maxlength="2000"></textarea></label>
  <button type="submit">Add</button>
</form>
<p id="message"></p>
<ul id="todo-list"></ul>
<button id="logout">Log out</button>
<script src="/static/todos.js"></script>
</body>
</html>`
)

// PageHandler は画面ページを配信するHTTPハンドラー。
// 認可の判定はルーティングガードが済ませているため、ここでは描画のみを行う。
type PageHandler struct {
	loginTmpl      *template.Template
	signupTmpl     *template.Template
	createTodoTmpl *template.Template
}

// NewPageHandler はPageHandlerを生成する。テンプレートの解析失敗はプログラミング
// エラーなので起動時にpanicさせる。
func NewPageHandler() *PageHandler {
	return &PageHandler{
		loginTmpl:      template.Must(template.New("login").Parse(loginPageTemplate)),
		signupTmpl:     template.Must(template.New("signup").Parse(signupPageTemplate)),
		createTodoTmpl: template.Must(template.New("create-todo").Parse(createTodoPageTemplate)),
	}
}

// Login はログインページを描画する。
// GET /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.loginTmpl, nil)
}

// Signup はサインアップページを描画する。
// GET /signup
func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.signupTmpl, nil)
}

// CreateTodo はTodo管理ページを描画する。
// GET /create-todo
func (h *PageHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	// ガードを通過したリクエストにはユーザーIDが入っている
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		// ガード未通過（直接ハンドラーを呼ばれた場合）はログインへ
		http.Redirect(w, r, middleware.LoginPath, http.StatusTemporaryRedirect)
		return
	}

	h.render(w, h.createTodoTmpl, map[string]string{"UserID": userID})
}

// render はテンプレートを実行する。
func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("failed to render page template",
			slog.String("template", tmpl.Name()),
			slog.String("error", err.Error()),
		)
	}
}
