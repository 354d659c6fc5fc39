package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appbasket "github.com/xiebiao/bookstore-basket/internal/application/basket"
	"github.com/xiebiao/bookstore-basket/internal/domain/basket"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
	"github.com/xiebiao/bookstore-basket/pkg/response"
)

// BasketHandler 购物车HTTP处理器
// 所有接口都需要登录,用户ID来自JWT,请求体中不接受user_id
type BasketHandler struct {
	store *appbasket.Store
}

// NewBasketHandler 创建购物车处理器
func NewBasketHandler(store *appbasket.Store) *BasketHandler {
	return &BasketHandler{store: store}
}

// GetBasket 购物车快照(含总额和适用折扣)
// GET /api/v1/basket
func (h *BasketHandler) GetBasket(c *gin.Context) {
	summary, err := h.store.Snapshot(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBasketResponse(summary))
}

// AddItem 加入购物车
// POST /api/v1/basket/items {"book_id": 1}
func (h *BasketHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	item, err := h.store.AddItem(c.Request.Context(), middleware.MustGetUserID(c), req.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBasketItemResponse(item))
}

// IncreaseQuantity 增加数量
// POST /api/v1/basket/items/:id/increase {"amount": 1}
func (h *BasketHandler) IncreaseQuantity(c *gin.Context) {
	h.changeQuantity(c, h.store.IncreaseQuantity)
}

// DecreaseQuantity 减少数量,减到0时整行删除(返回quantity=0)
// POST /api/v1/basket/items/:id/decrease {"amount": 1}
func (h *BasketHandler) DecreaseQuantity(c *gin.Context) {
	h.changeQuantity(c, h.store.DecreaseQuantity)
}

// RemoveItem 删除一行
// DELETE /api/v1/basket/items/:id
func (h *BasketHandler) RemoveItem(c *gin.Context) {
	var uri dto.ItemIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	item, err := h.store.RemoveItem(c.Request.Context(), middleware.MustGetUserID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBasketItemResponse(item))
}

// Clear 清空购物车
// DELETE /api/v1/basket
func (h *BasketHandler) Clear(c *gin.Context) {
	n, err := h.store.Clear(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ClearBasketResponse{Removed: n})
}

type quantityFunc = func(ctx context.Context, userID, itemID uint, amount int) (*basket.Item, error)

func (h *BasketHandler) changeQuantity(c *gin.Context, change quantityFunc) {
	var uri dto.ItemIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	var req dto.ChangeQuantityRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
			return
		}
	}

	item, err := change(c.Request.Context(), middleware.MustGetUserID(c), uri.ID, req.AmountOrDefault())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBasketItemResponse(item))
}
