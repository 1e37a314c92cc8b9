package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/liar-game/internal/errors"
)

// SuccessResponse 成功响应
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

// fail 按错误码返回对应的HTTP状态
func fail(c *gin.Context, err error) {
	appErr := errors.From(err)
	c.JSON(appErr.HTTPStatus(), errors.NewErrorResponse(appErr, c.GetHeader("X-Request-ID")))
}
