package main

import (
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-basket/internal/application/checkout"
	"github.com/xiebiao/bookstore-basket/internal/domain/book"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/router"
	"github.com/xiebiao/bookstore-basket/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-basket/pkg/jwt"
	"github.com/xiebiao/bookstore-basket/pkg/mq"
)

// provideDB 数据库连接,cleanup关闭连接池
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis Redis未启用时返回nil,图书缓存退化为直接查询
func provideRedis(cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if client != nil {
			_ = client.Close()
		}
	}
	return client, cleanup, nil
}

// providePublisher 未配置RabbitMQ时不发布事件
// 事件是尽力而为的,不阻止服务启动:启动时连接失败只记录日志,首次发布时再重连;
// 运行中RabbitMQ故障时由熔断器快速失败,冷却后重新尝试连接
func providePublisher(cfg *config.Config) (checkout.EventPublisher, func(), error) {
	if cfg.RabbitMQ.URL == "" {
		log.Info().Msg("未配置RabbitMQ,结算事件不会发布")
		return mq.NopPublisher{}, func() {}, nil
	}

	lazy := mq.NewLazyPublisher(func() (mq.MessagePublisher, error) {
		return mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	})
	if err := lazy.Connect(); err != nil {
		log.Warn().Err(err).Msg("RabbitMQ暂不可用,发布结算事件时重连")
	}
	guarded := mq.NewBreakerPublisher(lazy, circuitbreaker.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})
	return guarded, func() { _ = guarded.Close() }, nil
}

// provideBookCache 展示用的目录查询(购物车、交易历史、目录浏览)
func provideBookCache(client *goredis.Client, next book.Lookup, cfg *config.Config) book.CachedLookup {
	return redis.NewBookCache(client, next, cfg.Redis.BookTTL)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

func provideGinEngine(
	cfg *config.Config,
	bookHandler *handler.BookHandler,
	basketHandler *handler.BasketHandler,
	checkoutHandler *handler.CheckoutHandler,
	transactionHandler *handler.TransactionHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	return router.New(router.Handlers{
		Book:        bookHandler,
		Basket:      basketHandler,
		Checkout:    checkoutHandler,
		Transaction: transactionHandler,
		Auth:        authMiddleware,
	}, cfg.Server.RequestTimeout)
}
