package xstream

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xcoord/pkg/storage/xkv"
)

type event struct {
	Seq  int    `json:"seq"`
	Kind string `json:"kind"`
}

func setupPublisher(t *testing.T, opts ...Option) (*redis.Client, *Publisher) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	store, err := xkv.NewRedis(client)
	require.NoError(t, err)
	p, err := New(store, opts...)
	require.NoError(t, err)
	return client, p
}

// parseID 拆分 "<ms>-<seq>" 形式的记录 ID。
func parseID(t *testing.T, id string) (int64, int64) {
	t.Helper()
	ms, seq, ok := strings.Cut(id, "-")
	require.True(t, ok, id)
	a, err := strconv.ParseInt(ms, 10, 64)
	require.NoError(t, err)
	b, err := strconv.ParseInt(seq, 10, 64)
	require.NoError(t, err)
	return a, b
}

func TestNew_NilStore(t *testing.T) {
	p, err := New(nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNilStore)
}

func TestPublishToStream_Record(t *testing.T) {
	client, p := setupPublisher(t)
	ctx := context.Background()

	id, err := p.PublishToStream(ctx, "orders", event{Seq: 1, Kind: "created"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := client.XRange(ctx, "STREAM:orders", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, map[string]any{PayloadField: `{"seq":1,"kind":"created"}`}, msgs[0].Values)
}

func TestPublishToStream_Bounded(t *testing.T) {
	const maxLen = 20
	client, p := setupPublisher(t, WithMaxLen(maxLen))
	ctx := context.Background()

	var prevMs, prevSeq int64 = -1, -1
	for i := range maxLen + 50 {
		id, err := p.PublishToStream(ctx, "events", event{Seq: i})
		require.NoError(t, err)

		ms, seq := parseID(t, id)
		assert.True(t, ms > prevMs || (ms == prevMs && seq > prevSeq), "id %s not increasing", id)
		prevMs, prevSeq = ms, seq
	}

	n, err := client.XLen(ctx, "STREAM:events").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(maxLen), n)

	// 保留的是最新的记录
	msgs, err := client.XRange(ctx, "STREAM:events", "-", "+").Result()
	require.NoError(t, err)
	assert.Equal(t, `{"seq":50,"kind":""}`, msgs[0].Values[PayloadField])
	assert.Equal(t, `{"seq":69,"kind":""}`, msgs[len(msgs)-1].Values[PayloadField])
}

func TestPublishToStream_Options(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := xkv.NewMockStore(ctrl)
	store.EXPECT().
		XAddBounded(gomock.Any(), "s", map[string]any{PayloadField: "raw"}, int64(500), true).
		Return("1-0", nil)

	p, err := New(store,
		WithKeyPrefix(""),
		WithMaxLen(500),
		WithApproxTrim(true),
		WithCodec(CodecFunc(func(any) ([]byte, error) { return []byte("raw"), nil })),
	)
	require.NoError(t, err)

	id, err := p.PublishToStream(context.Background(), "s", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "1-0", id)
}

func TestPublishToStream_DefaultTrim(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := xkv.NewMockStore(ctrl)
	store.EXPECT().
		XAddBounded(gomock.Any(), "STREAM:s", gomock.Any(), DefaultMaxLen, false).
		Return("1-0", nil)

	p, err := New(store, WithMaxLen(0))
	require.NoError(t, err)
	_, err = p.PublishToStream(context.Background(), "s", 1)
	require.NoError(t, err)
}

func TestPublish_EncodeFailure(t *testing.T) {
	// 编码失败时不访问存储
	ctrl := gomock.NewController(t)
	store := xkv.NewMockStore(ctrl)

	p, err := New(store)
	require.NoError(t, err)

	_, err = p.PublishToStream(context.Background(), "s", make(chan int))
	assert.ErrorIs(t, err, ErrEncode)

	_, err = p.PublishToChannel(context.Background(), "c", func() {})
	assert.ErrorIs(t, err, ErrEncode)
}

func TestPublish_StoreErrors(t *testing.T) {
	errBoom := errors.New("boom")
	ctrl := gomock.NewController(t)
	store := xkv.NewMockStore(ctrl)
	store.EXPECT().XAddBounded(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errBoom)
	store.EXPECT().Publish(gomock.Any(), "c", gomock.Any()).Return(int64(0), errBoom)

	p, err := New(store)
	require.NoError(t, err)

	_, err = p.PublishToStream(context.Background(), "s", 1)
	assert.ErrorIs(t, err, errBoom)

	_, err = p.PublishToChannel(context.Background(), "c", 1)
	assert.ErrorIs(t, err, errBoom)
}

func TestPublish_EmptyName(t *testing.T) {
	_, p := setupPublisher(t)

	_, err := p.PublishToStream(context.Background(), "", 1)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = p.PublishToChannel(context.Background(), " ", 1)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestPublishToChannel_NoSubscribers(t *testing.T) {
	_, p := setupPublisher(t)

	n, err := p.PublishToChannel(context.Background(), "alerts", event{Seq: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPublishToChannel_OneSubscriber(t *testing.T) {
	client, p := setupPublisher(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "alerts")
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n, err := p.PublishToChannel(ctx, "alerts", event{Seq: 7, Kind: "disk"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, "alerts", msg.Channel)
	assert.Equal(t, `{"seq":7,"kind":"disk"}`, msg.Payload)
}
