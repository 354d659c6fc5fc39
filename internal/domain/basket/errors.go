package basket

import (
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrItemNotFound 购物车商品不存在(或不属于当前用户)
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeBasketItemNotFound, "购物车商品不存在")

	// ErrInvalidAmount 增减数量必须大于0,且增加后不超过MaxQuantity
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidAmount, "数量必须是正整数且不超过上限")

	// ErrInvalidID 标识不合法
	ErrInvalidID = apperrors.New(apperrors.ErrCodeInvalidParams, "标识不合法")
)
