package basket

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItem_RemovedBy(t *testing.T) {
	item := NewItem(1, 2)
	item.Quantity = 3

	assert.False(t, item.RemovedBy(2), "3减2还剩1")
	assert.True(t, item.RemovedBy(3), "减到0应删除")
	assert.True(t, item.RemovedBy(5), "减到负数应删除")
}

func TestItem_CanIncreaseBy(t *testing.T) {
	item := NewItem(1, 2)

	assert.True(t, item.CanIncreaseBy(1))
	assert.True(t, item.CanIncreaseBy(MaxQuantity-1), "恰好到上限")
	assert.False(t, item.CanIncreaseBy(MaxQuantity), "超过上限")
	assert.False(t, item.CanIncreaseBy(math.MaxInt), "不能溢出")
	assert.False(t, item.CanIncreaseBy(0))

	item.Quantity = MaxQuantity
	assert.False(t, item.CanIncreaseBy(1))
}

func TestNewItem(t *testing.T) {
	item := NewItem(7, 9)

	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.IsOwnedBy(7))
	assert.False(t, item.IsOwnedBy(8))
}

func TestValidateAmount(t *testing.T) {
	for _, amount := range []int{0, -1, -100} {
		assert.ErrorIs(t, ValidateAmount(amount), ErrInvalidAmount, "amount=%d", amount)
	}
	assert.NoError(t, ValidateAmount(1))
	assert.ErrorIs(t, ValidateID(0), ErrInvalidID)
}
