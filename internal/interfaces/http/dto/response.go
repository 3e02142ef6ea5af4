// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "sparkgen-api/pkg/errors"
)

// ErrorResponse 错误响应结构。
// Debug 仅在校验类错误时携带细节，服务端错误不外泄内部信息。
type ErrorResponse struct {
	Error   string              `json:"error"`
	Debug   string              `json:"debug,omitempty"`
	Code    apperrors.ErrorCode `json:"code"`
	TraceID string              `json:"trace_id,omitempty"`
}

// RespondError 按 AppError 映射 HTTP 状态码并输出错误信封
func RespondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		appErr = apperrors.Wrap(err, apperrors.CodeInternalError, "internal server error")
	}

	resp := ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		TraceID: c.GetString("trace_id"),
	}
	if appErr.HTTPStatus < http.StatusInternalServerError {
		resp.Debug = appErr.Detail
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Err != nil {
		// 上游模型错误按约面向调用方透出消息本身
		if appErr.Code == apperrors.CodeProviderFailure {
			resp.Error = appErr.Err.Error()
		}
	}

	c.JSON(appErr.HTTPStatus, resp)
}
