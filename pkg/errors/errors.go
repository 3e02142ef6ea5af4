// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired  ErrorCode = "2001"
	CodeTokenInvalid  ErrorCode = "2002"
	CodeTokenMissing  ErrorCode = "2003"
	CodeAccountBanned ErrorCode = "2004"

	// 请求错误 (3xxx)
	CodeUnknownRequestType ErrorCode = "3001"
	CodeMissingInput       ErrorCode = "3002"
	CodeMalformedPayload   ErrorCode = "3003"

	// 计费错误 (4xxx)
	CodeInsufficientCredits ErrorCode = "4001"
	CodeChargeFailed        ErrorCode = "4002"

	// 生成错误 (5xxx)
	CodeProviderFailure ErrorCode = "5001"
	CodeNoImageReturned ErrorCode = "5002"

	// 外部服务错误 (6xxx)
	CodeDatabaseError ErrorCode = "6001"
	CodeCacheError    ErrorCode = "6002"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息（返回拷贝，避免污染预定义错误）
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeMissingInput, CodeMalformedPayload:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden, CodeAccountBanned:
		return http.StatusForbidden
	case CodeNotFound, CodeUnknownRequestType:
		return http.StatusNotFound
	case CodeTooManyRequests, CodeInsufficientCredits:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam    = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized    = New(CodeUnauthorized, "unauthorized")
	ErrForbidden       = New(CodeForbidden, "forbidden")
	ErrNotFound        = New(CodeNotFound, "resource not found")
	ErrTooManyRequests = New(CodeTooManyRequests, "too many requests")
	ErrInternalError   = New(CodeInternalError, "internal server error")

	ErrTokenExpired  = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid  = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing  = New(CodeTokenMissing, "token missing")
	ErrAccountBanned = New(CodeAccountBanned, "account banned")

	ErrUnknownRequestType = New(CodeUnknownRequestType, "unknown request type")
	ErrMissingInput       = New(CodeMissingInput, "missing required input")
	ErrMalformedPayload   = New(CodeMalformedPayload, "malformed payload")

	ErrInsufficientCredits = New(CodeInsufficientCredits, "insufficient credits")
	ErrChargeFailed        = New(CodeChargeFailed, "credit deduction failed")

	ErrProviderFailure = New(CodeProviderFailure, "provider call failed")
	ErrNoImageReturned = New(CodeNoImageReturned, "no image returned by provider")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
