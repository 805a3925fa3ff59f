// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, todo, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailNotConfirmed  = "EMAIL_NOT_CONFIRMED"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodePartialSignup      = "PARTIAL_SIGNUP"
	ErrCodeStoreError         = "STORE_ERROR"
	ErrCodeSessionResolution  = "SESSION_RESOLUTION_ERROR"
	ErrCodeTodoNotFound       = "TODO_NOT_FOUND"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレスの存在有無を区別しない文言にする。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid login credentials",
		Category: "auth",
		Action:   "Check your email address and password, then try again.",
	}
}

// NewEmailNotConfirmedError はメール未確認エラーを生成する。
// パスワードが正しい場合でもメール確認が済むまでログインは拒否される。
func NewEmailNotConfirmedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotConfirmed,
		Message:  "Email is not verified. Please verify your email.",
		Category: "auth",
		Action:   "Open the confirmation link we sent to your email address.",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "User already registered",
		Category: "validation",
		Action:   "Log in with this email address, or use a different one.",
	}
}

// NewPartialSignupError はサインアップ部分失敗エラーを生成する。
// 認証プロバイダー側のレコードは作成済みだが、ディレクトリ行の作成に失敗した状態。
func NewPartialSignupError() *APIError {
	return &APIError{
		Code:     ErrCodePartialSignup,
		Message:  "User signup successful, but failed to store user data.",
		Category: "system",
		Action:   "Try logging in; your profile will be completed automatically.",
	}
}

// NewStoreError はストア操作失敗エラーを生成する。
func NewStoreError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeStoreError,
		Message:  reason,
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
}

// NewSessionResolutionError はセッション解決失敗エラーを生成する。
// ルーティングガードはこのエラーをログインへのリダイレクトに変換する。
func NewSessionResolutionError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionResolution,
		Message:  "Could not resolve the current session.",
		Category: "auth",
		Action:   "Log in again.",
	}
}

// NewTodoNotFoundError はTodo未検出エラーを生成する。
// 他ユーザーの行をIDで推測された場合も同じエラーを返し、存在を漏らさない。
func NewTodoNotFoundError(todoID string) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("Todo not found: %s", todoID),
		Category: "todo",
		Action:   "Refresh the list and try again.",
	}
}

// NewInvalidTokenError は確認トークン無効エラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "The confirmation link is invalid or has expired.",
		Category: "auth",
		Action:   "Sign up again to receive a new confirmation email.",
	}
}

// NewValidationError は入力バリデーションエラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  reason,
		Category: "validation",
		Action:   "Correct the input and try again.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "Log in again.",
	}
}
