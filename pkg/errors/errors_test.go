package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapStorage_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapStorage(cause, "查询购物车失败")

	assert.True(t, errors.Is(err, cause), "原因链应该保留")
	assert.True(t, IsStorage(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPredicates(t *testing.T) {
	notFound := New(ErrCodeBasketItemNotFound, "购物车商品不存在")
	invalid := New(ErrCodeInvalidAmount, "数量必须大于0")

	t.Run("通过fmt包装后仍能识别", func(t *testing.T) {
		wrapped := fmt.Errorf("increase: %w", notFound)
		assert.True(t, IsNotFound(wrapped))
		assert.True(t, errors.Is(wrapped, notFound))
	})

	t.Run("错误码分类", func(t *testing.T) {
		assert.True(t, IsValidation(invalid))
		assert.False(t, IsValidation(notFound))
		assert.True(t, IsConflict(ErrConcurrencyConflict))
		assert.True(t, IsUnauthorized(ErrTokenExpired))
	})

	t.Run("非AppError", func(t *testing.T) {
		plain := errors.New("boom")
		assert.False(t, IsNotFound(plain))
		assert.False(t, IsAppError(plain))
		assert.Equal(t, ErrCodeInternal, GetAppError(plain).Code)
	})
}
