package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_FanOutOrder(t *testing.T) {
	ch := New[int](16)
	a := ch.Subscribe()
	b := ch.Subscribe()
	require.Equal(t, 2, ch.Len())

	for i := 0; i < 10; i++ {
		ch.Send(i)
	}

	for _, sub := range []*Subscription[int]{a, b} {
		for i := 0; i < 10; i++ {
			assert.Equal(t, i, <-sub.Updates())
		}
		assert.Equal(t, uint64(0), sub.Missed())
	}
}

func TestChannel_SlowConsumerMisses(t *testing.T) {
	ch := New[int](4)
	slow := ch.Subscribe()

	// publish more than the buffer holds without draining
	for i := 0; i < 10; i++ {
		ch.Send(i)
	}

	assert.Equal(t, uint64(6), slow.Missed())

	// the oldest items were evicted; the newest four remain, in order
	got := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		got = append(got, <-slow.Updates())
	}
	assert.Equal(t, []int{6, 7, 8, 9}, got)
}

func TestChannel_SendNeverBlocks(t *testing.T) {
	ch := New[int](1)
	_ = ch.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			ch.Send(i)
		}
	}()
	<-done // would deadlock if Send blocked on the stuck subscriber
}

func TestChannel_SubscribeStartsEmpty(t *testing.T) {
	ch := New[string](4)
	ch.Send("before")

	sub := ch.Subscribe()
	ch.Send("after")

	assert.Equal(t, "after", <-sub.Updates())
	select {
	case v := <-sub.Updates():
		t.Fatalf("unexpected item %q", v)
	default:
	}
}

func TestSubscription_Unsubscribe(t *testing.T) {
	ch := New[int](4)
	sub := ch.Subscribe()
	ch.Send(1)
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent
	ch.Send(2)

	assert.Equal(t, 1, <-sub.Updates())
	select {
	case v := <-sub.Updates():
		t.Fatalf("received %d after unsubscribe", v)
	default:
	}
	assert.Equal(t, 0, ch.Len())
}
