package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrUnknown          ErrorCode = 1000
	ErrInvalidParam     ErrorCode = 1001
	ErrNotFound         ErrorCode = 1002
	ErrAlreadyExists    ErrorCode = 1003
	ErrPermissionDenied ErrorCode = 1004
	ErrTimeout          ErrorCode = 1005

	// 游戏错误 (2000-2999)
	ErrNotAllowedAction         ErrorCode = 2000 // 操作者不符合要求（非房主、非当前回合玩家、非骗子）
	ErrStateNotAllowed          ErrorCode = 2001 // 当前游戏状态不允许该命令
	ErrNotExist                 ErrorCode = 2002 // 房间、会话或指定玩家不存在
	ErrRequiredParameterMissing ErrorCode = 2003 // 游戏设置缺失或非法

	// 通信错误 (4000-4999)
	ErrWebSocketSend ErrorCode = 4001
	ErrMessageFormat ErrorCode = 4007

	// 数据库错误 (5000-5999)
	ErrDatabaseConnect ErrorCode = 5000
	ErrDatabaseQuery   ErrorCode = 5001
	ErrDatabaseInsert  ErrorCode = 5002

	// 配置错误 (6000-6999)
	ErrConfigLoad ErrorCode = 6000

	// 安全错误 (7000-7999)
	ErrAuthentication ErrorCode = 7000
	ErrTokenInvalid   ErrorCode = 7003
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	ErrUnknown:          "未知错误",
	ErrInvalidParam:     "无效的参数",
	ErrNotFound:         "资源未找到",
	ErrAlreadyExists:    "资源已存在",
	ErrPermissionDenied: "权限不足",
	ErrTimeout:          "操作超时",

	ErrNotAllowedAction:         "不允许的操作",
	ErrStateNotAllowed:          "当前游戏状态不允许该操作",
	ErrNotExist:                 "对象不存在",
	ErrRequiredParameterMissing: "缺少必要参数",

	ErrWebSocketSend: "WebSocket发送失败",
	ErrMessageFormat: "消息格式错误",

	ErrDatabaseConnect: "数据库连接失败",
	ErrDatabaseQuery:   "数据库查询失败",
	ErrDatabaseInsert:  "数据库插入失败",

	ErrConfigLoad: "配置加载失败",

	ErrAuthentication: "认证失败",
	ErrTokenInvalid:   "无效的令牌",
}

// 错误码到协议标签的映射，发送给客户端的错误通知使用标签而不是数字
var errorTags = map[ErrorCode]string{
	ErrNotAllowedAction:         "NOT_ALLOWED_ACTION",
	ErrStateNotAllowed:          "STATE_NOT_ALLOWED",
	ErrNotExist:                 "NOT_EXIST",
	ErrRequiredParameterMissing: "REQUIRED_PARAMETER_MISSING",
	ErrMessageFormat:            "MESSAGE_FORMAT",
	ErrAuthentication:           "AUTHENTICATION",
	ErrTokenInvalid:             "TOKEN_INVALID",
}

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode    `json:"code"`            // 错误码
	Message string       `json:"message"`         // 错误消息
	Details string       `json:"details"`         // 详细信息
	Cause   error        `json:"-"`               // 原始错误
	Stack   []StackFrame `json:"stack,omitempty"` // 调用栈
}

// StackFrame 调用栈帧
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Tag 返回错误的协议标签
func (e *AppError) Tag() string {
	if tag, ok := errorTags[e.Code]; ok {
		return tag
	}
	return "INTERNAL"
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	// 捕获调用栈
	err.captureStack(2)

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return New(code, details)
}

// NotAllowed 操作者不符合要求
func NotAllowed(format string, args ...interface{}) *AppError {
	return Newf(ErrNotAllowedAction, format, args...)
}

// StateNotAllowed 当前状态不允许
func StateNotAllowed(format string, args ...interface{}) *AppError {
	return Newf(ErrStateNotAllowed, format, args...)
}

// NotExist 对象不存在
func NotExist(format string, args ...interface{}) *AppError {
	return Newf(ErrNotExist, format, args...)
}

// ParameterMissing 参数缺失或非法
func ParameterMissing(format string, args ...interface{}) *AppError {
	return Newf(ErrRequiredParameterMissing, format, args...)
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，保留原始错误码
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr = New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf 包装格式化错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return Wrap(err, code, details)
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}

	return ErrUnknown
}

// From 将任意错误转换为AppError
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrUnknown)
}

// captureStack 捕获调用栈
func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)

	if n > 0 {
		frames := runtime.CallersFrames(pcs[:n])
		for {
			frame, more := frames.Next()

			// 跳过runtime和本包的调用
			if strings.Contains(frame.Function, "runtime.") ||
				strings.Contains(frame.Function, "github.com/wfunc/liar-game/internal/errors") {
				if !more {
					break
				}
				continue
			}

			e.Stack = append(e.Stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})

			if !more || len(e.Stack) >= 10 {
				break
			}
		}
	}
}

// GetStack 获取格式化的调用栈
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrInvalidParam, e.Code == ErrRequiredParameterMissing, e.Code == ErrMessageFormat:
		return 400 // Bad Request
	case e.Code == ErrNotFound, e.Code == ErrNotExist:
		return 404 // Not Found
	case e.Code == ErrPermissionDenied, e.Code == ErrNotAllowedAction:
		return 403 // Forbidden
	case e.Code == ErrStateNotAllowed, e.Code == ErrAlreadyExists:
		return 409 // Conflict
	case e.Code == ErrTimeout:
		return 408 // Request Timeout
	case e.Code >= 7000 && e.Code <= 7999:
		return 401 // Unauthorized
	case e.Code >= 5000 && e.Code <= 5999:
		return 503 // Service Unavailable
	default:
		return 500 // Internal Server Error
	}
}

// IsValidation 判断是否为命令校验失败（不重试，只回给发送者）
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrNotAllowedAction, ErrStateNotAllowed, ErrNotExist, ErrRequiredParameterMissing:
		return true
	default:
		return false
	}
}

// ErrorResponse API错误响应结构
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
