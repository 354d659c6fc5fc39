package user

import (
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")
)
