package xstream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/storage/xkv"
)

const componentName = "xstream"

// Publisher 有界流发布器，无状态，可并发使用。
type Publisher struct {
	store xkv.Store
	opts  *options
}

// New 创建 Publisher。
func New(store xkv.Store, opts ...Option) (*Publisher, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Publisher{store: store, opts: o}, nil
}

// PublishToStream 编码 payload 并追加到流，返回存储分配的记录 ID。
func (p *Publisher) PublishToStream(ctx context.Context, stream string, payload any) (id string, err error) {
	if strings.TrimSpace(stream) == "" {
		return "", ErrEmptyKey
	}

	ctx, span := xmetrics.Start(ctx, p.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "xadd",
		Kind:      xmetrics.KindProducer,
		Attrs:     []xmetrics.Attr{xmetrics.String("stream", stream)},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	data, err := p.encode(payload)
	if err != nil {
		return "", err
	}

	key := p.opts.keyPrefix + stream
	id, err = p.store.XAddBounded(ctx, key, map[string]any{PayloadField: string(data)}, p.opts.maxLen, p.opts.approx)
	if err != nil {
		p.opts.logger.Error(ctx, "stream publish failed", xlog.Key(key), xlog.Err(err))
		return "", fmt.Errorf("xstream: publish to stream %q: %w", stream, err)
	}
	p.opts.logger.Debug(ctx, "stream record appended", xlog.Key(key), slog.String("id", id))
	return id, nil
}

// PublishToChannel 编码 payload 并广播到频道，返回收到消息的订阅者数量。
func (p *Publisher) PublishToChannel(ctx context.Context, channel string, payload any) (receivers int64, err error) {
	if strings.TrimSpace(channel) == "" {
		return 0, ErrEmptyKey
	}

	ctx, span := xmetrics.Start(ctx, p.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "publish",
		Kind:      xmetrics.KindProducer,
		Attrs:     []xmetrics.Attr{xmetrics.String("channel", channel)},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.Int64("receivers", receivers)}})
	}()

	data, err := p.encode(payload)
	if err != nil {
		return 0, err
	}

	receivers, err = p.store.Publish(ctx, channel, string(data))
	if err != nil {
		p.opts.logger.Error(ctx, "channel publish failed", slog.String("channel", channel), xlog.Err(err))
		return 0, fmt.Errorf("xstream: publish to channel %q: %w", channel, err)
	}
	if receivers == 0 {
		p.opts.logger.Debug(ctx, "channel message dropped, no subscribers", slog.String("channel", channel))
	}
	return receivers, nil
}

func (p *Publisher) encode(payload any) ([]byte, error) {
	data, err := p.opts.codec.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return data, nil
}
