package mq

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookstore-basket/pkg/circuitbreaker"
)

// MessagePublisher 发布接口,Publisher和NopPublisher都实现它
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Close() error
}

// BreakerPublisher 为发布加熔断保护
// RabbitMQ不可用时连续失败达到阈值后直接返回circuitbreaker.ErrOpen,结算不再等待发布超时
type BreakerPublisher struct {
	next    MessagePublisher
	breaker *circuitbreaker.Breaker
}

// NewBreakerPublisher 包装发布者
func NewBreakerPublisher(next MessagePublisher, settings circuitbreaker.Settings) *BreakerPublisher {
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from, to circuitbreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("熔断器状态变化")
		}
	}
	return &BreakerPublisher{
		next:    next,
		breaker: circuitbreaker.New("rabbitmq", settings),
	}
}

// Publish 熔断器打开时不调用下游
func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return p.breaker.Execute(func() error {
		return p.next.Publish(ctx, routingKey, message)
	})
}

// Close 关闭下游发布者
func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
