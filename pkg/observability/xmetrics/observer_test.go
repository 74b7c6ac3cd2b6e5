package xmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nilObserver struct{}

type ctxKey struct{}

//nolint:staticcheck // 模拟返回 nil ctx 的实现
func (nilObserver) Start(context.Context, SpanOptions) (context.Context, Span) {
	return nil, nil
}

func TestStart_NilObserver(t *testing.T) {
	ctx, span := Start(context.Background(), nil, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.IsType(t, NoopSpan{}, span)
	span.End(Result{})
}

func TestStart_FallbackOnNilReturns(t *testing.T) {
	parent := context.WithValue(context.Background(), ctxKey{}, "v")
	ctx, span := Start(parent, nilObserver{}, SpanOptions{})
	assert.Equal(t, parent, ctx)
	assert.IsType(t, NoopSpan{}, span)
}

func TestNoopObserver(t *testing.T) {
	//nolint:staticcheck // 验证 nil ctx 兜底
	ctx, span := NoopObserver{}.Start(nil, SpanOptions{})
	assert.NotNil(t, ctx)
	span.End(Result{})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Internal", KindInternal.String())
	assert.Equal(t, "Client", KindClient.String())
	assert.Equal(t, "Producer", KindProducer.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
