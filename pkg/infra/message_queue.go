package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fystack/keno-odds/pkg/common/logger"
)

var (
	MaxStreamBytes = int64(8 * 1024 * 1024) // 8MB, a report is ~15KB of JSON
)

type MessageQueue interface {
	Enqueue(ctx context.Context, topic string, message []byte, options *EnqueueOptions) error
	Close()
}

type EnqueueOptions struct {
	IdempotententKey string
}

type jsPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type msgQueue struct {
	js jsPublisher
}

type NATsMessageQueueManager struct {
	queueName string
	js        jetstream.JetStream
}

// NewNATsMessageQueueManager makes sure the stream exists and captures
// subjectWildCards.
func NewNATsMessageQueueManager(ctx context.Context, queueName string, subjectWildCards []string, nc *nats.Conn) (*NATsMessageQueueManager, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.Stream(ctx, queueName)
	if err != nil {
		logger.Warn("Stream not found, creating new stream", "stream", queueName)
	}
	if stream != nil {
		if info, err := stream.Info(ctx); err == nil {
			logger.Info("Stream found", "name", info.Config.Name, "subjects", info.Config.Subjects, "state", info.State.Msgs)
		}
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        queueName,
		Description: "Stream for " + queueName,
		Subjects:    subjectWildCards,
		MaxBytes:    MaxStreamBytes,
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Duplicates:  time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("create JetStream stream %s: %w", queueName, err)
	}
	logger.Info("JetStream stream ready", "stream", queueName, "subjects", subjectWildCards)

	return &NATsMessageQueueManager{
		queueName: queueName,
		js:        js,
	}, nil
}

func (m *NATsMessageQueueManager) NewMessageQueue() MessageQueue {
	return &msgQueue{js: m.js}
}

func (mq *msgQueue) Enqueue(ctx context.Context, topic string, message []byte, options *EnqueueOptions) error {
	logger.Info("Enqueueing message", "topic", topic, "message size", len(message))
	header := nats.Header{}
	if options != nil && options.IdempotententKey != "" {
		header.Add("Nats-Msg-Id", options.IdempotententKey)
	}

	_, err := mq.js.PublishMsg(ctx, &nats.Msg{
		Subject: topic,
		Data:    message,
		Header:  header,
	})

	if err != nil {
		return fmt.Errorf("error enqueueing message: %w", err)
	}
	return nil
}

func (mq *msgQueue) Close() {}
