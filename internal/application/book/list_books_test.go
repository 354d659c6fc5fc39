package book_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/xiebiao/bookstore-basket/internal/application/book"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql/testdb"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

func TestListBooksUseCase(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	uc := appbook.NewListBooksUseCase(mysql.NewBookRepository(db))

	testdb.CreateBook(t, db, testdb.BookSpec{Name: "Dune", Price: "12.00", Author: "Frank Herbert"})
	testdb.CreateBook(t, db, testdb.BookSpec{Name: "Emma", Price: "8.00", Author: "Jane Austen"})

	t.Run("默认分页", func(t *testing.T) {
		resp, err := uc.Execute(ctx, book.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
		assert.Len(t, resp.List, 2)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 20, resp.PageSize)
	})

	t.Run("按价格筛选", func(t *testing.T) {
		price := 10.0
		resp, err := uc.Execute(ctx, book.Filter{Price: &price, PriceOp: book.PriceLE})
		require.NoError(t, err)
		require.Len(t, resp.List, 1)
		assert.Equal(t, "Emma", resp.List[0].Name)
	})

	t.Run("价格筛选方式不合法", func(t *testing.T) {
		price := 10.0
		_, err := uc.Execute(ctx, book.Filter{Price: &price, PriceOp: "lt"})
		assert.ErrorIs(t, err, book.ErrInvalidPriceFilter)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestGetBookUseCase(t *testing.T) {
	db := testdb.New(t)
	uc := appbook.NewGetBookUseCase(mysql.NewBookRepository(db))

	id := testdb.CreateBook(t, db, testdb.BookSpec{Name: "Dune"})

	b, err := uc.Execute(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Name)

	_, err = uc.Execute(context.Background(), 0)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	_, err = uc.Execute(context.Background(), 404)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}
