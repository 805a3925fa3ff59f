package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/todoman/internal/model"
)

// ActionResponse は全アクションが返す統一レスポンスフォーマット。
// 成功・失敗にかかわらずこの形で返し、例外を境界の外へ伝播させない。
type ActionResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteActionSuccess は成功レスポンスを統一フォーマットで書き込む。
func WriteActionSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ActionResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteActionError はAPIErrorを統一フォーマットのエラーレスポンスに変換して書き込む。
// ステータスコードはエラーコードから導出する。
func WriteActionError(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForAPIError(apiErr))
	json.NewEncoder(w).Encode(ActionResponse{
		Success: false,
		Message: apiErr.Message,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(ActionResponse{
		Success: false,
		Message: "An unexpected error occurred.",
	})
}

// statusForAPIError はエラーコードをHTTPステータスコードにマッピングする。
func statusForAPIError(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials, model.ErrCodeSessionResolution:
		return http.StatusUnauthorized
	case model.ErrCodeEmailNotConfirmed:
		return http.StatusForbidden
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	case model.ErrCodeTodoNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidation, model.ErrCodeInvalidToken:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
