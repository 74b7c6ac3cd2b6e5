package xkv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errDial = errors.New("dial tcp: connection refused")

func TestNewBreaker_NilStorePanics(t *testing.T) {
	assert.Panics(t, func() { NewBreaker(nil) })
}

func TestBreaker_PassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockStore(ctrl)
	b := NewBreaker(mock)
	ctx := context.Background()

	mock.EXPECT().SetNX(ctx, "k", "v").Return(true, nil)
	mock.EXPECT().GetSet(ctx, "k", "v2").Return("v", true, nil)
	mock.EXPECT().Get(ctx, "k").Return("v2", true, nil)
	mock.EXPECT().Expire(ctx, "k", time.Second).Return(true, nil)
	mock.EXPECT().Del(ctx, "k").Return(nil)
	mock.EXPECT().XAddBounded(ctx, "s", gomock.Any(), int64(10), true).Return("1-0", nil)
	mock.EXPECT().Publish(ctx, "ch", "p").Return(int64(2), nil)

	ok, err := b.SetNX(ctx, "k", "v")
	require.NoError(t, err)
	assert.True(t, ok)

	old, found, err := b.GetSet(ctx, "k", "v2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", old)

	v, found, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", v)

	ok, err = b.Expire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Del(ctx, "k"))

	id, err := b.XAddBounded(ctx, "s", map[string]any{"payload": "x"}, 10, true)
	require.NoError(t, err)
	assert.Equal(t, "1-0", id)

	n, err := b.Publish(ctx, "ch", "p")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockStore(ctrl)

	var transitions []gobreaker.State
	b := NewBreaker(mock,
		WithBreakerName("test"),
		WithConsecutiveFailures(3),
		WithOpenTimeout(time.Minute),
		WithStateChange(func(_ string, _, to gobreaker.State) {
			transitions = append(transitions, to)
		}),
	)
	ctx := context.Background()

	// 只允许 3 次真实调用，之后熔断器直接拒绝
	mock.EXPECT().Get(ctx, "k").Return("", false, errDial).Times(3)

	for i := 0; i < 3; i++ {
		_, _, err := b.Get(ctx, "k")
		require.ErrorIs(t, err, errDial)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, _, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestBreaker_ContextCancelDoesNotTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockStore(ctrl)
	b := NewBreaker(mock, WithConsecutiveFailures(1))
	ctx := context.Background()

	mock.EXPECT().Del(ctx, "k").Return(context.Canceled).Times(2)

	assert.ErrorIs(t, b.Del(ctx, "k"), context.Canceled)
	assert.ErrorIs(t, b.Del(ctx, "k"), context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockStore(ctrl)
	b := NewBreaker(mock,
		WithConsecutiveFailures(1),
		WithOpenTimeout(20*time.Millisecond),
		WithHalfOpenRequests(1),
	)
	ctx := context.Background()

	gomock.InOrder(
		mock.EXPECT().SetNX(ctx, "k", "v").Return(false, errDial),
		mock.EXPECT().SetNX(ctx, "k", "v").Return(true, nil),
	)

	_, err := b.SetNX(ctx, "k", "v")
	require.ErrorIs(t, err, errDial)
	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(40 * time.Millisecond)

	ok, err := b.SetNX(ctx, "k", "v")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
