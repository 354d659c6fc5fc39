// Package mq 封装RabbitMQ消息发布
//
// 结算成功后发布checkout.completed事件,下游(通知、报表)按需订阅:
//
//	Publisher ──checkout.completed──> Exchange(topic) ──> Queue ──> 下游消费者
//
// 发布是尽力而为的:事件在数据库事务提交之后发送,发送失败只记录日志和指标,
// 不会回滚已经完成的结算
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookstore-basket/pkg/metrics"
)

// dialTimeout 建立TCP连接的超时
const dialTimeout = 3 * time.Second

// Publisher 消息发布者
// amqp.Channel不是并发安全的,发布时加锁
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher 连接RabbitMQ并声明topic类型的持久化Exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // Exchange名称
		"topic",  // Exchange类型
		true,     // Durable(持久化)
		false,    // AutoDelete
		false,    // Internal
		false,    // NoWait
		nil,      // Arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	log.Info().Str("exchange", exchange).Msg("消息发布者已创建")

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish 序列化为JSON并发布
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // Exchange
		routingKey, // Routing Key
		false,      // Mandatory
		false,      // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // 消息持久化
			Timestamp:    time.Now(),
		},
	)
	p.mu.Unlock()

	metrics.ObservePublish(p.exchange, routingKey, err)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	log.Debug().Str("routing_key", routingKey).Int("bytes", len(body)).Msg("消息已发布")
	return nil
}

// Close 关闭连接
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher 未配置RabbitMQ时使用,丢弃所有消息
type NopPublisher struct{}

// Publish 什么都不做
func (NopPublisher) Publish(context.Context, string, interface{}) error {
	return nil
}

// Close 什么都不做
func (NopPublisher) Close() error {
	return nil
}
