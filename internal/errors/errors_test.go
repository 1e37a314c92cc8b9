package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrNotAllowedAction)
	suite.NotNil(err)
	suite.Equal(ErrNotAllowedAction, err.Code)
	suite.Equal("不允许的操作", err.Message)
	suite.Empty(err.Details)

	// 多个详情
	err = New(ErrNotExist, "房间不存在", "room: r1")
	suite.Equal("房间不存在; room: r1", err.Details)
}

// 测试游戏错误快捷构造
func (suite *ErrorsTestSuite) TestGameShortcuts() {
	suite.Equal(ErrNotAllowedAction, NotAllowed("sender %s", "p1").Code)
	suite.Equal(ErrStateNotAllowed, StateNotAllowed("state %s", "VOTE_LIAR").Code)
	suite.Equal(ErrNotExist, NotExist("room %s", "r1").Code)
	suite.Equal(ErrRequiredParameterMissing, ParameterMissing("round").Code)
	suite.Equal("state VOTE_LIAR", StateNotAllowed("state %s", "VOTE_LIAR").Details)
}

// 测试协议标签
func (suite *ErrorsTestSuite) TestTag() {
	suite.Equal("NOT_ALLOWED_ACTION", New(ErrNotAllowedAction).Tag())
	suite.Equal("STATE_NOT_ALLOWED", New(ErrStateNotAllowed).Tag())
	suite.Equal("NOT_EXIST", New(ErrNotExist).Tag())
	suite.Equal("REQUIRED_PARAMETER_MISSING", New(ErrRequiredParameterMissing).Tag())
	suite.Equal("INTERNAL", New(ErrDatabaseQuery).Tag())
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	suite.Nil(Wrap(nil, ErrUnknown))

	// 包装已有的AppError保留错误码
	appErr := New(ErrNotExist, "玩家不存在")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrNotExist, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试fmt包装后的识别
func (suite *ErrorsTestSuite) TestIsThroughFmtWrap() {
	err := fmt.Errorf("处理命令失败: %w", StateNotAllowed("state"))
	suite.True(Is(err, ErrStateNotAllowed))
	suite.Equal(ErrStateNotAllowed, GetCode(err))
	suite.Equal(ErrStateNotAllowed, From(err).Code)
	suite.True(IsValidation(err))
}

// 测试获取错误码
func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrUnknown, GetCode(errors.New("标准错误")))
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.False(Is(nil, ErrNotExist))
	suite.False(IsValidation(errors.New("标准错误")))
}

// 测试错误消息
func (suite *ErrorsTestSuite) TestError() {
	err := &AppError{
		Code:    ErrNotExist,
		Message: "对象不存在",
	}
	suite.Equal("[2002] 对象不存在", err.Error())

	err.Details = "room: r1"
	suite.Equal("[2002] 对象不存在: room: r1", err.Error())
}

// 测试WithCause
func (suite *ErrorsTestSuite) TestWithCause() {
	cause := errors.New("SQL语法错误")
	err := New(ErrDatabaseQuery).WithCause(cause)
	suite.Equal(cause, err.Unwrap())
	suite.Equal("SQL语法错误", err.Details)

	err2 := New(ErrDatabaseQuery, "查询失败").WithCause(cause)
	suite.Equal("查询失败", err2.Details)
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrRequiredParameterMissing, 400},
		{ErrNotExist, 404},
		{ErrNotAllowedAction, 403},
		{ErrStateNotAllowed, 409},
		{ErrTokenInvalid, 401},
		{ErrDatabaseConnect, 503},
		{ErrUnknown, 500},
	}

	for _, tc := range testCases {
		err := New(tc.code)
		suite.Equal(tc.expected, err.HTTPStatus(), "错误码 %d 应该返回HTTP状态码 %d", tc.code, tc.expected)
	}
}

// 测试调用栈捕获
func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.Greater(len(err.Stack), 0)
	suite.NotEmpty(err.GetStack())
}

// 测试错误响应
func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrNotExist, "房间不存在")
	response := NewErrorResponse(err, "req-123")

	suite.False(response.Success)
	suite.Equal(err, response.Error)
	suite.Equal("req-123", response.RequestID)
	suite.Greater(response.Timestamp, int64(0))
}

// 测试未知错误码
func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	err := New(ErrorCode(99999))
	suite.Equal("未知错误", err.Message)
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
