//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appbasket "github.com/xiebiao/bookstore-basket/internal/application/basket"
	appbook "github.com/xiebiao/bookstore-basket/internal/application/book"
	"github.com/xiebiao/bookstore-basket/internal/application/checkout"
	"github.com/xiebiao/bookstore-basket/internal/application/history"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/middleware"
)

// infrastructureSet 数据库、缓存、消息队列
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	providePublisher,
)

// repositorySet 仓储与事务管理器
// book.Lookup(权威,结算使用)和book.CachedLookup(展示使用)是两个不同的类型
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewBasketRepository,
	mysql.NewTransactionRepository,
	mysql.NewTxManager,
	provideBookCache,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appbasket.NewStore,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	checkout.NewUseCase,
	history.NewListGroupsUseCase,
	history.NewGetGroupUseCase,
)

// interfaceSet HTTP处理器与中间件
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewBookHandler,
	handler.NewBasketHandler,
	handler.NewCheckoutHandler,
	handler.NewTransactionHandler,
	provideGinEngine,
)

// InitializeApp 组装整个应用
// cleanup关闭消息队列连接、Redis连接和数据库连接池
func InitializeApp(cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
