// Package metrics 提供基于Prometheus的指标收集
//
// # 指标类型
//
//   - Counter: 只增不减的累计值(请求数、结算次数)
//   - Gauge: 可增可减的瞬时值(处理中的请求数)
//   - Histogram: 观测值的分布(请求耗时、结算耗时)
//
// # 使用示例
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	result, err := doCheckout(ctx)
//	metrics.ObserveCheckout(start, result.Discount, err)
//
// # 命名规范
//
//  1. Counter以_total结尾
//  2. Histogram以单位结尾(_seconds)
//  3. 标签只用有限取值(op、result、status),不要用user_id等高基数字段
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

var (
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path(路由模板,如/api/v1/basket/items/:id)、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 购物车指标

	// BasketOperationsTotal 购物车操作总数
	// 标签:op(add/increase/decrease/remove/clear)、result
	BasketOperationsTotal *prometheus.CounterVec

	// 结算指标

	// CheckoutsTotal 结算总数,标签:result
	CheckoutsTotal *prometheus.CounterVec

	// CheckoutDuration 结算耗时(加锁、计价、写交易记录、清空购物车)
	CheckoutDuration prometheus.Histogram

	// CheckoutDiscountTotal 成功结算按折扣档位统计,标签:discount(0/5/15)
	CheckoutDiscountTotal *prometheus.CounterVec

	// 缓存指标

	// BookCacheRequestsTotal 图书缓存查询,标签:result(hit/miss/error)
	BookCacheRequestsTotal *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签:exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 使用promauto注册到默认Registry;可重复调用,只注册一次
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	BasketOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basket_operations_total",
			Help: "购物车操作总数",
		},
		[]string{"op", "result"},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "结算总数",
		},
		[]string{"result"},
	)

	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "checkout_duration_seconds",
			Help: "结算耗时(秒)",
			// 结算在一个数据库事务内完成,桶:5ms到5s
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	CheckoutDiscountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_discount_total",
			Help: "成功结算按折扣档位统计",
		},
		[]string{"discount"},
	)

	BookCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_cache_requests_total",
			Help: "图书缓存查询总数",
		},
		[]string{"result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// Result 把错误归类为有限的标签值
func Result(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsValidation(err):
		return "invalid"
	case apperrors.IsNotFound(err):
		return "not_found"
	case apperrors.IsConflict(err):
		return "conflict"
	default:
		return "error"
	}
}

// ObserveBasketOp 记录一次购物车操作
func ObserveBasketOp(op string, err error) {
	InitMetrics()
	BasketOperationsTotal.WithLabelValues(op, Result(err)).Inc()
}

// ObserveCheckout 记录一次结算;失败时discount被忽略
func ObserveCheckout(start time.Time, discount int, err error) {
	InitMetrics()
	CheckoutsTotal.WithLabelValues(Result(err)).Inc()
	CheckoutDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		CheckoutDiscountTotal.WithLabelValues(strconv.Itoa(discount)).Inc()
	}
}

// ObserveBookCache 记录一次缓存查询,result取hit/miss/error
func ObserveBookCache(result string, n int) {
	InitMetrics()
	BookCacheRequestsTotal.WithLabelValues(result).Add(float64(n))
}

// ObservePublish 记录一次消息发布
func ObservePublish(exchange, routingKey string, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "error"
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}
