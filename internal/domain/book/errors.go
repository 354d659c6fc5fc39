package book

import (
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrInvalidPriceFilter 价格筛选条件不合法
	ErrInvalidPriceFilter = apperrors.New(apperrors.ErrCodeInvalidParams, "价格筛选方式只能是le、ge或eq")
)
