package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Oskru/study-smart/config"
)

// 领域事件路由键
const (
	EventPreferenceSubmitted   = "preference.submitted"
	EventAvailabilitySubmitted = "availability.submitted"
	EventSelectionDeleted      = "selection.deleted"
)

// Event 领域事件信封
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	ActorID    string      `json:"actor_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// NewEvent 创建事件并填充 ID 与时间
func NewEvent(eventType, actorID string, payload interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher 领域事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ── RabbitMQ 实现 ──

type rabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex // amqp.Channel 不支持并发发布
}

// NewPublisher 按配置创建发布器；未启用时返回空实现
func NewPublisher(cfg *config.MessagingConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		logger.Info("领域事件发布未启用")
		return NopPublisher{}, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("打开 RabbitMQ 通道失败: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("声明交换机失败: %w", err)
	}

	logger.Info("RabbitMQ 连接成功", zap.String("exchange", cfg.Exchange))
	return &rabbitPublisher{conn: conn, ch: ch, exchange: cfg.Exchange, logger: logger}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		p.logger.Error("发布领域事件失败", zap.String("type", event.Type), zap.Error(err))
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

func (p *rabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// Encode 序列化事件
func Encode(event Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("序列化事件失败: %w", err)
	}
	return body, nil
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

// Publish 不做任何事
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close 不做任何事
func (NopPublisher) Close() error { return nil }
