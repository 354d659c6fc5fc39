package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-basket/internal/application/checkout"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-basket/pkg/response"
)

// CheckoutHandler 结算HTTP处理器
type CheckoutHandler struct {
	checkoutUseCase *checkout.UseCase
}

// NewCheckoutHandler 创建结算处理器
func NewCheckoutHandler(checkoutUseCase *checkout.UseCase) *CheckoutHandler {
	return &CheckoutHandler{checkoutUseCase: checkoutUseCase}
}

// Checkout 结算当前购物车
// POST /api/v1/checkout
// 空购物车返回400;并发冲突返回409,可以整体重试
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	result, err := h.checkoutUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCheckoutResponse(result))
}
