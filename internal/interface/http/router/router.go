package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xiebiao/bookstore-basket/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-basket/pkg/response"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Book        *handler.BookHandler
	Basket      *handler.BasketHandler
	Checkout    *handler.CheckoutHandler
	Transaction *handler.TransactionHandler
	Auth        *middleware.AuthMiddleware
}

// New 注册全部路由
// 中间件顺序:Recovery → 访问日志 → 指标 → 请求超时 → (认证) → Handler
func New(h Handlers, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.Timeout(requestTimeout),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// 目录(公开接口)
		books := v1.Group("/books")
		{
			books.GET("", h.Book.ListBooks)
			books.GET("/:id", h.Book.GetBook)
		}

		authorized := v1.Group("")
		authorized.Use(h.Auth.RequireAuth())

		basket := authorized.Group("/basket")
		{
			basket.GET("", h.Basket.GetBasket)
			basket.DELETE("", h.Basket.Clear)
			basket.POST("/items", h.Basket.AddItem)
			basket.POST("/items/:id/increase", h.Basket.IncreaseQuantity)
			basket.POST("/items/:id/decrease", h.Basket.DecreaseQuantity)
			basket.DELETE("/items/:id", h.Basket.RemoveItem)
		}

		authorized.POST("/checkout", h.Checkout.Checkout)

		transactions := authorized.Group("/transactions")
		{
			transactions.GET("", h.Transaction.ListGroups)
			transactions.GET("/:group_id", h.Transaction.GetGroup)
		}
	}

	return r
}
