package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-basket/internal/domain/book"
)

// countingLookup 记录回源次数
type countingLookup struct {
	books map[uint]*book.Book
	calls int
}

func (l *countingLookup) FindByID(_ context.Context, id uint) (*book.Book, error) {
	l.calls++
	b, ok := l.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (l *countingLookup) FindByIDs(_ context.Context, ids []uint) (map[uint]*book.Book, error) {
	l.calls++
	result := make(map[uint]*book.Book)
	for _, id := range ids {
		if b, ok := l.books[id]; ok {
			result[id] = b
		}
	}
	return result, nil
}

func (l *countingLookup) List(context.Context, book.Filter) ([]*book.Book, int64, error) {
	l.calls++
	return nil, 0, nil
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *countingLookup, book.CachedLookup) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	series := "Discworld"
	next := &countingLookup{books: map[uint]*book.Book{
		1: {ID: 1, Name: "Mort", Price: decimal.RequireFromString("12.50"), Series: &series},
		2: {ID: 2, Name: "Emma", Price: decimal.RequireFromString("8.00")},
	}}
	return mr, next, NewBookCache(client, next, time.Minute)
}

func TestBookCache_FindByID(t *testing.T) {
	mr, next, cache := newTestCache(t)
	ctx := context.Background()

	t.Run("未命中回源并回填", func(t *testing.T) {
		b, err := cache.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Mort", b.Name)
		assert.Equal(t, 1, next.calls)
		assert.True(t, mr.Exists("book:1"))
	})

	t.Run("命中不回源", func(t *testing.T) {
		b, err := cache.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "12.50", b.Price.StringFixed(2))
		require.NotNil(t, b.Series)
		assert.Equal(t, "Discworld", *b.Series)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("过期后重新回源", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		_, err := cache.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("不存在不写缓存", func(t *testing.T) {
		_, err := cache.FindByID(ctx, 9)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		assert.False(t, mr.Exists("book:9"))
	})
}

func TestBookCache_FindByIDs(t *testing.T) {
	mr, next, cache := newTestCache(t)
	ctx := context.Background()

	_, err := cache.FindByID(ctx, 1)
	require.NoError(t, err)
	next.calls = 0

	books, err := cache.FindByIDs(ctx, []uint{1, 2, 9})
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, "Emma", books[2].Name)
	assert.Equal(t, 1, next.calls, "只为未命中的ID回源一次")
	assert.True(t, mr.Exists("book:2"))

	books, err = cache.FindByIDs(ctx, []uint{1, 2})
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, 1, next.calls, "全部命中不回源")
}

func TestBookCache_RedisDown(t *testing.T) {
	mr, next, cache := newTestCache(t)
	mr.Close()

	b, err := cache.FindByID(context.Background(), 2)
	require.NoError(t, err, "Redis不可用时降级为直接查询")
	assert.Equal(t, "Emma", b.Name)
	assert.Equal(t, 1, next.calls)

	books, err := cache.FindByIDs(context.Background(), []uint{1, 2})
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestNewBookCache_NilClient(t *testing.T) {
	next := &countingLookup{}
	assert.Same(t, next, NewBookCache(nil, next, time.Minute))
}
