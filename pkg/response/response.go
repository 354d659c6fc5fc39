package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

// Response 统一响应结构
// 设计说明:
// 1. Code是业务错误码(非HTTP状态码),方便客户端判断错误类型
// 2. Message是用户友好的提示信息
// 3. Data是业务数据,成功时返回,失败时为null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应(Code=0表示成功)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应(自动处理AppError)
// HTTP状态码按错误类别映射;内部原因只写日志,不返回给客户端
//
//	result, err := checkoutUseCase.Execute(ctx, userID)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := StatusOf(appErr)

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Int("code", appErr.Code).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("请求处理失败")
	}

	c.JSON(status, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// ErrorWithCode 自定义错误码和消息(参数校验失败等)
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(StatusOf(apperrors.New(code, message)), Response{
		Code:    code,
		Message: message,
	})
}

// Abort 中间件中返回错误并终止后续处理
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// StatusOf 错误类别 → HTTP状态码
func StatusOf(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsConflict(err):
		return http.StatusConflict
	case apperrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`        // 数据列表
	Total      int64       `json:"total"`       // 总记录数
	Page       int         `json:"page"`        // 当前页码
	PageSize   int         `json:"page_size"`   // 每页大小
	TotalPages int         `json:"total_pages"` // 总页数
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize != 0 {
			totalPages++
		}
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}
