package publisher

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	mr := miniredis.RunT(t)

	p := NewRedisPublisher(context.Background(), mr.Addr(), 0, "deals", 1, 500)
	defer p.Close()

	payload := []byte(`{"source_id":"ppomppu","url":"https://example.com/1"}`)
	require.NoError(t, p.Publish("ppomppu", payload))

	// Single stream configured, so the entry must land on deals:0
	entries, err := mr.Stream("deals:0")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Values, 2)

	assert.Equal(t, "ppomppu", entries[0].Values[0])
	decoded, err := base64.StdEncoding.DecodeString(entries[0].Values[1])
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestTrimStreams(t *testing.T) {
	mr := miniredis.RunT(t)

	p := NewRedisPublisher(context.Background(), mr.Addr(), 0, "deals", 1, 2)
	defer p.Close()

	for _, msg := range []string{"one", "two", "three", "four"} {
		require.NoError(t, p.Publish("ppomppu", []byte(msg)))
	}

	require.NoError(t, p.TrimStreams())

	entries, err := mr.Stream("deals:0")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStreamCountFloor(t *testing.T) {
	mr := miniredis.RunT(t)

	// A zero stream count is clamped to one instead of panicking in rand
	p := NewRedisPublisher(context.Background(), mr.Addr(), 0, "deals", 0, 500)
	defer p.Close()

	require.NoError(t, p.Publish("clien", []byte("msg")))

	entries, err := mr.Stream("deals:0")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
