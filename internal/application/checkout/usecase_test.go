package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appbasket "github.com/xiebiao/bookstore-basket/internal/application/basket"
	"github.com/xiebiao/bookstore-basket/internal/application/checkout"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/domain/transaction"
	"github.com/xiebiao/bookstore-basket/internal/domain/user"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql/testdb"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []checkout.CompletedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if routingKey == checkout.RoutingKeyCompleted {
		p.events = append(p.events, message.(checkout.CompletedEvent))
	}
	return p.err
}

// failingTxRepo 写入成功后返回错误,用于验证整体回滚
type failingTxRepo struct {
	transaction.Repository
}

func (r failingTxRepo) CreateBatch(ctx context.Context, rows []*transaction.Transaction) error {
	if err := r.Repository.CreateBatch(ctx, rows); err != nil {
		return err
	}
	return apperrors.WrapStorage(errors.New("disk full"), "写入交易记录失败")
}

type fixture struct {
	db        *gorm.DB
	store     *appbasket.Store
	checkout  *checkout.UseCase
	txRepo    transaction.Repository
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.New(t)
	basketRepo := mysql.NewBasketRepository(db)
	userRepo := mysql.NewUserRepository(db)
	books := mysql.NewBookRepository(db)
	txRepo := mysql.NewTransactionRepository(db)
	txManager := mysql.NewTxManager(db)
	publisher := &recordingPublisher{}

	return &fixture{
		db:        db,
		store:     appbasket.NewStore(basketRepo, userRepo, books, txManager),
		checkout:  checkout.NewUseCase(basketRepo, userRepo, books, txRepo, txManager, publisher),
		txRepo:    txRepo,
		publisher: publisher,
	}
}

// fill 把bookID加入购物车qty次
func (f *fixture) fill(t *testing.T, userID, bookID uint, qty int) {
	t.Helper()
	for i := 0; i < qty; i++ {
		_, err := f.store.AddItem(context.Background(), userID, bookID)
		require.NoError(t, err)
	}
}

func TestCheckout_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID := testdb.CreateUser(t, f.db, "alice")
	a := testdb.CreateBook(t, f.db, testdb.BookSpec{Name: "A", Price: "60.00"})
	b := testdb.CreateBook(t, f.db, testdb.BookSpec{Name: "B", Price: "50.00"})
	f.fill(t, userID, a, 2)
	f.fill(t, userID, b, 1)

	result, err := f.checkout.Execute(ctx, userID)
	require.NoError(t, err)

	assert.True(t, transaction.IsValidGroupID(result.GroupID), result.GroupID)
	assert.Equal(t, "170.00", result.Total.StringFixed(2))
	assert.Equal(t, 5, result.Discount)
	assert.Equal(t, "161.50", result.DiscountedTotal.StringFixed(2))

	require.Len(t, result.Transactions, 2)
	charges := map[uint]string{}
	for _, tx := range result.Transactions {
		assert.NotZero(t, tx.ID)
		assert.Equal(t, result.GroupID, tx.GroupID)
		assert.Equal(t, 5, tx.Discount)
		charges[tx.BookID] = tx.PriceTotal.StringFixed(2)
	}
	assert.Equal(t, "114.00", charges[a])
	assert.Equal(t, "47.50", charges[b])

	t.Run("购物车已清空", func(t *testing.T) {
		items, err := f.store.List(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("交易行已持久化", func(t *testing.T) {
		rows, err := f.txRepo.ListByGroup(ctx, userID, result.GroupID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("发布结算事件", func(t *testing.T) {
		require.Len(t, f.publisher.events, 1)
		event := f.publisher.events[0]
		assert.Equal(t, result.GroupID, event.GroupID)
		assert.Equal(t, userID, event.UserID)
		assert.Equal(t, 5, event.Discount)
		assert.Equal(t, "161.50", event.Total.StringFixed(2))
		assert.Len(t, event.Items, 2)
	})
}

func TestCheckout_NoDiscountBelowThreshold(t *testing.T) {
	f := newFixture(t)

	userID := testdb.CreateUser(t, f.db, "alice")
	bookID := testdb.CreateBook(t, f.db, testdb.BookSpec{Price: "50.00"})
	f.fill(t, userID, bookID, 2)

	result, err := f.checkout.Execute(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Discount, "恰好100不打折")
	assert.Equal(t, "100.00", result.DiscountedTotal.StringFixed(2))
}

func TestCheckout_EmptyBasket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID := testdb.CreateUser(t, f.db, "alice")

	_, err := f.checkout.Execute(ctx, userID)
	assert.ErrorIs(t, err, checkout.ErrEmptyBasket)
	assert.True(t, apperrors.IsValidation(err))

	rows, err := f.txRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, f.publisher.events)
}

func TestCheckout_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Execute(context.Background(), 9999)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestCheckout_MissingBookRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID := testdb.CreateUser(t, f.db, "alice")
	a := testdb.CreateBook(t, f.db, testdb.BookSpec{Name: "A"})
	b := testdb.CreateBook(t, f.db, testdb.BookSpec{Name: "B"})
	f.fill(t, userID, a, 1)
	f.fill(t, userID, b, 1)

	// 图书下架
	require.NoError(t, f.db.Delete(&mysql.BookModel{}, b).Error)

	_, err := f.checkout.Execute(ctx, userID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	rows, err := f.txRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, rows, "没有写入任何交易行")

	items, err := f.store.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 2, "购物车保持不变")
}

func TestCheckout_StorageFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uc := checkout.NewUseCase(
		mysql.NewBasketRepository(f.db),
		mysql.NewUserRepository(f.db),
		mysql.NewBookRepository(f.db),
		failingTxRepo{Repository: f.txRepo},
		mysql.NewTxManager(f.db),
		f.publisher,
	)

	userID := testdb.CreateUser(t, f.db, "alice")
	bookID := testdb.CreateBook(t, f.db, testdb.BookSpec{})
	f.fill(t, userID, bookID, 3)

	_, err := uc.Execute(ctx, userID)
	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))

	rows, err := f.txRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, rows, "已写入的交易行被回滚")

	items, err := f.store.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Empty(t, f.publisher.events)
}

func TestCheckout_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	userID := testdb.CreateUser(t, f.db, "alice")
	bookID := testdb.CreateBook(t, f.db, testdb.BookSpec{})
	f.fill(t, userID, bookID, 1)

	result, err := f.checkout.Execute(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.GroupID)
}

func TestCheckout_NilPublisher(t *testing.T) {
	f := newFixture(t)
	uc := checkout.NewUseCase(
		mysql.NewBasketRepository(f.db),
		mysql.NewUserRepository(f.db),
		mysql.NewBookRepository(f.db),
		f.txRepo,
		mysql.NewTxManager(f.db),
		nil,
	)

	userID := testdb.CreateUser(t, f.db, "alice")
	bookID := testdb.CreateBook(t, f.db, testdb.BookSpec{})
	f.fill(t, userID, bookID, 1)

	_, err := uc.Execute(context.Background(), userID)
	require.NoError(t, err)
}

func TestCheckout_ConcurrentWithAdds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID := testdb.CreateUser(t, f.db, "alice")
	bookID := testdb.CreateBook(t, f.db, testdb.BookSpec{})
	f.fill(t, userID, bookID, 1)

	const adds = 20
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.store.AddItem(ctx, userID, bookID)
			assert.NoError(t, err)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.checkout.Execute(ctx, userID)
		assert.NoError(t, err)
	}()
	wg.Wait()

	// 每次加入要么在结算之前(进入交易),要么在结算之后(留在购物车)
	total := 0
	items, err := f.store.List(ctx, userID)
	require.NoError(t, err)
	for _, item := range items {
		total += item.Quantity
	}
	rows, err := f.txRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	for _, row := range rows {
		total += row.Quantity
	}
	assert.Equal(t, adds+1, total)
}

func TestCheckout_ConcurrentCheckouts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID := testdb.CreateUser(t, f.db, "alice")
	bookID := testdb.CreateBook(t, f.db, testdb.BookSpec{})
	f.fill(t, userID, bookID, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.checkout.Execute(ctx, userID)
		}(i)
	}
	wg.Wait()

	succeeded, empty := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, checkout.ErrEmptyBasket):
			empty++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "同一购物车只能结算一次")
	assert.Equal(t, 1, empty)

	rows, err := f.txRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
