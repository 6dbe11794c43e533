package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fystack/keno-odds/pkg/common/logger"
	"github.com/fystack/keno-odds/pkg/infra"
	"github.com/fystack/keno-odds/pkg/retry"
)

// QueueSink publishes the JSON report on topic. The report ID is the
// idempotency key, so republishing an identical report is deduplicated.
type QueueSink struct {
	queue infra.MessageQueue
	topic string
	retry retry.ExponentialConfig
}

func NewQueueSink(queue infra.MessageQueue, topic string) *QueueSink {
	return &QueueSink{
		queue: queue,
		topic: topic,
		retry: retry.ExponentialConfig{
			InitialInterval: retry.DefaultInterval,
			MaxElapsedTime:  30 * time.Second,
			MaxAttempts:     retry.DefaultMaxAttempts,
		},
	}
}

// WithRetry overrides the publish backoff.
func (s *QueueSink) WithRetry(cfg retry.ExponentialConfig) *QueueSink {
	s.retry = cfg
	return s
}

func (s *QueueSink) Name() string { return "queue:" + s.topic }

func (s *QueueSink) Write(ctx context.Context, r *Report) error {
	log := logger.With("topic", s.topic, "id", r.ID)

	var data []byte
	cfg := s.retry
	cfg.OnRetry = func(err error, next time.Duration) {
		log.Warn("Publish report failed, retrying", "err", err, "next", next)
	}
	return retry.ExponentialContext(ctx, func() error {
		if data == nil {
			encoded, err := json.Marshal(r)
			if err != nil {
				return retry.Permanent(fmt.Errorf("encode report: %w", err))
			}
			data = encoded
		}
		return s.queue.Enqueue(ctx, s.topic, data, &infra.EnqueueOptions{
			IdempotententKey: r.ID,
		})
	}, cfg)
}
