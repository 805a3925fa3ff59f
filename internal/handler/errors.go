package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
)

// writeServiceError はサービス層のエラーを統一フォーマットのレスポンスに変換する。
// APIError以外のエラーはログに記録し、一般的な500を返す。
// 境界の外へは常に {success, message} の形でしか出ない。
func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteActionError(w, apiErr)
		return
	}

	slog.Error("unexpected service error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// failureReason はエラーをメトリクスのreasonラベル値に変換する。
// カーディナリティを抑えるため、エラーコードのみを使う。
func failureReason(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "UNKNOWN"
}
