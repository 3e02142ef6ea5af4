package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sparkgen-api/internal/application/generation/provider"
	"sparkgen-api/internal/domain/entity"
	"sparkgen-api/internal/domain/repository"
	"sparkgen-api/internal/infrastructure/messaging"
	"sparkgen-api/pkg/logger"
	"sparkgen-api/pkg/metrics"
)

const recordTimeout = 10 * time.Second

// Recorder 成本遥测记录器。
// Record 立即返回，落库和外发在独立 goroutine 中尽力而为地完成，
// 任何失败只记日志，绝不影响调用方请求。
type Recorder struct {
	events   repository.CostEventRepository
	producer *messaging.Producer
}

var _ provider.CostSink = (*Recorder)(nil)

// NewRecorder 创建记录器；events 和 producer 均可为 nil（对应通道关闭）
func NewRecorder(events repository.CostEventRepository, producer *messaging.Producer) *Recorder {
	return &Recorder{
		events:   events,
		producer: producer,
	}
}

// Record 异步记录一次模型调用成本
func (r *Recorder) Record(ctx context.Context, sample provider.CostSample) {
	event := &entity.CostEvent{
		ID:               uuid.NewString(),
		AccountID:        sample.AccountID,
		RequestType:      sample.RequestType,
		Provider:         sample.Provider,
		Model:            sample.Model,
		PromptTokens:     sample.PromptTokens,
		CompletionTokens: sample.CompletionTokens,
		CostUSD:          EstimateUSD(sample.Model, sample.PromptTokens, sample.CompletionTokens),
		CreatedAt:        time.Now(),
	}

	metrics.ImageCostUSD.Add(event.CostUSD)

	// 请求结束不应打断遥测写入，剥离取消信号后限时执行
	bg := context.WithoutCancel(ctx)
	go func() {
		writeCtx, cancel := context.WithTimeout(bg, recordTimeout)
		defer cancel()

		if r.events != nil {
			if err := r.events.Create(writeCtx, event); err != nil {
				logger.Warn(writeCtx, "cost event persist failed", "event_id", event.ID, "error", err)
			}
		}
		if r.producer != nil {
			if _, err := r.producer.PublishCostEvent(writeCtx, event); err != nil {
				logger.Warn(writeCtx, "cost event publish failed", "event_id", event.ID, "error", err)
			}
		}
	}()
}
