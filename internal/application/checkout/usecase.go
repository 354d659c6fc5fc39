package checkout

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-basket/internal/domain/basket"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/domain/pricing"
	"github.com/xiebiao/bookstore-basket/internal/domain/transaction"
	"github.com/xiebiao/bookstore-basket/internal/domain/user"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
	"github.com/xiebiao/bookstore-basket/pkg/metrics"
	"github.com/xiebiao/bookstore-basket/pkg/tracing"
)

const (
	tracerName     = "checkout"
	publishTimeout = 5 * time.Second
)

// ErrEmptyBasket 购物车为空,不能结算
var ErrEmptyBasket = apperrors.New(apperrors.ErrCodeEmptyBasket, "购物车为空,无法结算")

// UseCase 结算用例
// 设计说明:
// 1. 整个结算在一个数据库事务中完成:锁定用户 → 锁定购物车行 → 计价 → 批量写入交易 → 清空购物车
// 2. 任何一步失败都整体回滚,不会出现写了交易但购物车没清空的情况
// 3. 计价使用权威目录(book.Lookup),不读缓存
// 4. 交易行保存结算时的折扣和实付金额,之后图书改价不影响历史记录
// 5. 提交后发布checkout.completed事件,发布失败只记录日志
type UseCase struct {
	basketRepo basket.Repository
	userRepo   user.Repository
	books      book.Lookup
	txRepo     transaction.Repository
	txManager  *mysql.TxManager
	publisher  EventPublisher
}

// NewUseCase 创建结算用例
func NewUseCase(
	basketRepo basket.Repository,
	userRepo user.Repository,
	books book.Lookup,
	txRepo transaction.Repository,
	txManager *mysql.TxManager,
	publisher EventPublisher,
) *UseCase {
	return &UseCase{
		basketRepo: basketRepo,
		userRepo:   userRepo,
		books:      books,
		txRepo:     txRepo,
		txManager:  txManager,
		publisher:  publisher,
	}
}

// Result 结算结果
type Result struct {
	GroupID         string                     `json:"transaction_id"`
	Total           decimal.Decimal            `json:"total"`
	Discount        int                        `json:"discount"`
	DiscountedTotal decimal.Decimal            `json:"discounted_total"`
	Transactions    []*transaction.Transaction `json:"transactions"`
}

// Execute 结算当前用户的购物车
func (uc *UseCase) Execute(ctx context.Context, userID uint) (result *Result, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Checkout.Execute")
	defer func() {
		discount := 0
		if result != nil {
			discount = result.Discount
		}
		metrics.ObserveCheckout(start, discount, err)
		tracing.End(span, err)
	}()

	if err := basket.ValidateID(userID); err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 先锁用户,再锁购物车行,与购物车修改的加锁顺序一致
		if _, err := uc.userRepo.LockByID(ctx, userID); err != nil {
			return err
		}

		items, err := uc.basketRepo.LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyBasket
		}

		lines, err := uc.priceLines(ctx, items)
		if err != nil {
			return err
		}
		quote := pricing.Price(lines)

		groupID := transaction.NewGroupID()
		rows := make([]*transaction.Transaction, len(items))
		for i, item := range items {
			rows[i] = &transaction.Transaction{
				GroupID:    groupID,
				UserID:     userID,
				BookID:     item.BookID,
				Quantity:   item.Quantity,
				Discount:   quote.Discount,
				PriceTotal: quote.Charges[i],
				Book:       item.Book,
			}
		}

		if err := uc.txRepo.CreateBatch(ctx, rows); err != nil {
			return err
		}
		if _, err := uc.basketRepo.DeleteByUser(ctx, userID); err != nil {
			return err
		}

		result = &Result{
			GroupID:         groupID,
			Total:           quote.Total,
			Discount:        quote.Discount,
			DiscountedTotal: quote.Discounted,
			Transactions:    rows,
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("结算失败,已回滚")
		return nil, err
	}

	log.Info().
		Uint("user_id", userID).
		Str("transaction_id", result.GroupID).
		Str("trace_id", tracing.ExtractTraceID(ctx)).
		Int("lines", len(result.Transactions)).
		Str("total", result.Total.StringFixed(2)).
		Int("discount", result.Discount).
		Str("discounted_total", result.DiscountedTotal.StringFixed(2)).
		Msg("结算完成")

	uc.publish(ctx, userID, result)
	return result, nil
}

// priceLines 按购物车行顺序取价格,图书缺失时报错
// 同时把图书快照挂到购物车行上
func (uc *UseCase) priceLines(ctx context.Context, items []*basket.Item) ([]pricing.Line, error) {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}

	books, err := uc.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		b, ok := books[item.BookID]
		if !ok {
			log.Warn().Uint("book_id", item.BookID).Msg("结算时图书已不在目录中")
			return nil, book.ErrBookNotFound
		}
		item.Book = b
		lines[i] = pricing.Line{Price: b.Price, Quantity: item.Quantity}
	}
	return lines, nil
}

// publish 事务已提交,事件发布与请求的取消解耦
func (uc *UseCase) publish(ctx context.Context, userID uint, result *Result) {
	if uc.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := uc.publisher.Publish(ctx, RoutingKeyCompleted, newCompletedEvent(result, userID)); err != nil {
		log.Error().Err(err).Str("transaction_id", result.GroupID).Msg("发布结算事件失败")
	}
}
