package transaction

import (
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

var (
	// ErrGroupNotFound 交易记录不存在
	ErrGroupNotFound = apperrors.New(apperrors.ErrCodeTransactionNotFound, "交易记录不存在")

	// ErrInvalidGroupID 交易组ID格式不正确
	ErrInvalidGroupID = apperrors.New(apperrors.ErrCodeInvalidParams, "交易编号格式不正确")
)
