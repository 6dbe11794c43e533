package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	msgs []*nats.Msg
	err  error
}

func (p *fakePublisher) PublishMsg(_ context.Context, msg *nats.Msg, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.msgs = append(p.msgs, msg)
	return &jetstream.PubAck{Stream: "KENO", Sequence: uint64(len(p.msgs))}, nil
}

func TestEnqueue_SetsMsgID(t *testing.T) {
	pub := &fakePublisher{}
	mq := &msgQueue{js: pub}

	require.NoError(t, mq.Enqueue(context.Background(), "keno.report", []byte(`{}`), &EnqueueOptions{IdempotententKey: "abc"}))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "keno.report", pub.msgs[0].Subject)
	assert.Equal(t, "abc", pub.msgs[0].Header.Get("Nats-Msg-Id"))

	require.NoError(t, mq.Enqueue(context.Background(), "keno.report", []byte(`{}`), nil))
	assert.Empty(t, pub.msgs[1].Header.Get("Nats-Msg-Id"))
}

func TestEnqueue_WrapsError(t *testing.T) {
	errTimeout := errors.New("nats: timeout")
	mq := &msgQueue{js: &fakePublisher{err: errTimeout}}

	err := mq.Enqueue(context.Background(), "keno.report", nil, nil)
	assert.ErrorIs(t, err, errTimeout)
}

func TestCodecByName(t *testing.T) {
	assert.Equal(t, Codec(Gob), CodecByName("gob"))
	assert.Equal(t, Codec(JSON), CodecByName("json"))
	assert.Equal(t, Codec(JSON), CodecByName(""))
}
