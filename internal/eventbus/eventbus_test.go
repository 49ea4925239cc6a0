package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }

func TestOnAndEmit(t *testing.T) {
	b := New()
	var got []int
	unsubscribe := On(b, func(_ context.Context, e ping) { got = append(got, e.N) })

	Emit(context.Background(), b, ping{N: 1})
	Emit(context.Background(), b, "ignored")
	unsubscribe()
	unsubscribe()
	Emit(context.Background(), b, ping{N: 2})

	require.Equal(t, []int{1}, got)
}

func TestUnsubscribeRemovesOnlyOwnHandler(t *testing.T) {
	b := New()
	var first, second int
	h := func(_ context.Context, _ ping) { first++ }
	un1 := On(b, h)
	On(b, func(_ context.Context, _ ping) { second++ })
	_ = On(b, h)

	un1()
	Emit(context.Background(), b, ping{})

	require.Equal(t, 1, first)
	require.Equal(t, 1, second)
}

func TestGlobalBus(t *testing.T) {
	Use(nil)
	Publish(context.Background(), ping{})
	require.NotNil(t, Subscribe(func(context.Context, ping) {}))

	b := New()
	Use(b)
	t.Cleanup(func() { Use(nil) })

	var n int
	unsubscribe := Subscribe(func(_ context.Context, e ping) { n += e.N })
	Publish(context.Background(), ping{N: 3})
	unsubscribe()
	Publish(context.Background(), ping{N: 3})
	require.Equal(t, 3, n)
}
