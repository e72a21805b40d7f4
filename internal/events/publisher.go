package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bookstall/internal/config"

	"github.com/streadway/amqp"
)

// Publisher 订单事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data interface{}) error
	Close() error
}

// Envelope 事件消息体
type Envelope struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// OrderEvent 订单事件数据
type OrderEvent struct {
	OrderID     uint       `json:"order_id"`
	Status      string     `json:"status"`
	IsAnonymous bool       `json:"is_anonymous"`
	CustomerID  *uint      `json:"customer_id,omitempty"`
	SellerID    *uint      `json:"seller_id,omitempty"`
	Total       string     `json:"total"`
	ChangedAt   *time.Time `json:"changed_at,omitempty"`
}

// NewPublisher 根据配置创建发布器，未启用时返回空实现
func NewPublisher(cfg *config.EventsConfig) (Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	return NewAMQPPublisher(cfg.URL, cfg.Exchange)
}

// NoopPublisher 未启用事件时的空实现
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// Close 无操作
func (NoopPublisher) Close() error { return nil }

// AMQPPublisher RabbitMQ topic 交换机发布器
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher 连接 RabbitMQ 并声明 topic 交换机
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	exchange = strings.TrimSpace(exchange)
	if exchange == "" {
		return nil, fmt.Errorf("events exchange is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish 以 routingKey 发布 JSON 事件
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := EncodeEnvelope(routingKey, data, time.Now())
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Close 关闭通道与连接
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EncodeEnvelope 序列化事件
func EncodeEnvelope(routingKey string, data interface{}, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Envelope{Event: routingKey, OccurredAt: at, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}
