// Package messaging 提供成本遥测消息流实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sparkgen-api/internal/domain/entity"
)

var tracer = otel.Tracer("messaging")

// Producer 成本事件生产者，写入 Redis Stream。
// 外部账务/分析系统作为消费端，不在本服务内。
type Producer struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, stream string, maxLen int64) *Producer {
	if stream == "" {
		stream = "sparkgen:cost_events"
	}
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// PublishCostEvent 发布成本事件到流
func (p *Producer) PublishCostEvent(ctx context.Context, event *entity.CostEvent) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.PublishCostEvent",
		trace.WithAttributes(
			attribute.String("stream", p.stream),
			attribute.String("event.id", event.ID),
			attribute.String("event.model", event.Model),
		))
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal cost event: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish cost event: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}
