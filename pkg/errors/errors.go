package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误
// Code给客户端判断错误类别,Message是可展示的提示,Err是内部原因(只进日志,不返回给客户端)
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As沿原因链查找
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装内部错误
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// WrapStorage 包装持久化层错误(连接失败、约束冲突等)
// 原始错误保留在Err中,调用方可以用errors.Is继续判断
func WrapStorage(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// - 400xx: 业务规则
// - 401xx: 认证
// - 404xx: 资源不存在
// - 409xx: 参数校验
// - 5xxxx: 服务端错误

const (
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误

	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期

	ErrCodeNotFound            = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound        = 40401 // 用户不存在
	ErrCodeBookNotFound        = 40402 // 图书不存在
	ErrCodeBasketItemNotFound  = 40403 // 购物车商品不存在
	ErrCodeTransactionNotFound = 40404 // 交易记录不存在

	ErrCodeConcurrencyConflict = 40010 // 并发冲突,调用方可整体重试

	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
	ErrCodeInvalidAmount = 40902 // 数量不合法
	ErrCodeEmptyBasket   = 40903 // 购物车为空
)

var (
	ErrUnauthorized = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "Token已过期")

	ErrConcurrencyConflict = New(ErrCodeConcurrencyConflict, "操作冲突,请重试")

	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError(如果不是AppError则包装成Internal错误)
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// IsNotFound 资源不存在类错误
func IsNotFound(err error) bool {
	return codeIn(err, 40400, 40499)
}

// IsValidation 参数校验类错误,在任何持久化副作用之前返回
func IsValidation(err error) bool {
	return codeIn(err, 40900, 40999)
}

// IsStorage 持久化失败
func IsStorage(err error) bool {
	return codeIn(err, ErrCodeDatabaseError, ErrCodeDatabaseError)
}

// IsConflict 并发冲突
func IsConflict(err error) bool {
	return codeIn(err, ErrCodeConcurrencyConflict, ErrCodeConcurrencyConflict)
}

// IsUnauthorized 认证类错误
func IsUnauthorized(err error) bool {
	return codeIn(err, 40100, 40199)
}

func codeIn(err error, lo, hi int) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code >= lo && appErr.Code <= hi
}
