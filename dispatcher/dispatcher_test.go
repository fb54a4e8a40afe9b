package dispatcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversTopicThenWildcard(t *testing.T) {
	d := New[int]()
	var got []string

	d.Subscribe("price", func(topic string, v int) {
		got = append(got, "topic")
	})
	d.SubscribeAll(func(topic string, v int) {
		got = append(got, "all:"+topic)
	})

	d.Publish("price", 1)
	d.Publish("name", 2)

	assert.Equal(t, []string{"topic", "all:price", "all:name"}, got)
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	d := New[string]()
	var a, b int

	subA := d.Subscribe("x", func(string, string) { a++ })
	d.Subscribe("x", func(string, string) { b++ })
	require.Equal(t, 2, d.Len())

	subA.Unsubscribe()
	d.Publish("x", "v")

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, d.Len())
}

func TestZeroValueDispatcherIsUsable(t *testing.T) {
	var d Dispatcher[int]
	calls := 0
	d.SubscribeAll(func(string, int) { calls++ })
	d.Publish("any", 1)
	assert.Equal(t, 1, calls)
}

func TestNilHandlerIsIgnored(t *testing.T) {
	d := New[int]()
	sub := d.Subscribe("x", nil)
	sub.Unsubscribe()
	assert.Equal(t, 0, d.Len())
}

func TestHandlerMaySubscribeDuringPublish(t *testing.T) {
	d := New[int]()
	var wg sync.WaitGroup
	wg.Add(1)
	d.Subscribe("x", func(string, int) {
		d.Subscribe("y", func(string, int) {})
		wg.Done()
	})
	d.Publish("x", 1)
	wg.Wait()
	assert.Equal(t, 2, d.Len())
}
