package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookstore-basket/internal/application/book"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
	"github.com/xiebiao/bookstore-basket/pkg/response"
)

// BookHandler 目录HTTP处理器(公开接口)
type BookHandler struct {
	listBooksUseCase *appbook.ListBooksUseCase
	getBookUseCase   *appbook.GetBookUseCase
}

// NewBookHandler 创建目录处理器
func NewBookHandler(listBooksUseCase *appbook.ListBooksUseCase, getBookUseCase *appbook.GetBookUseCase) *BookHandler {
	return &BookHandler{
		listBooksUseCase: listBooksUseCase,
		getBookUseCase:   getBookUseCase,
	}
}

// ListBooks 目录浏览
// GET /api/v1/books?author=&category=&price=20&price_op=le&page=1&page_size=20
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), req.ToFilter())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	var uri dto.BookIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	b, err := h.getBookUseCase.Execute(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, b)
}
