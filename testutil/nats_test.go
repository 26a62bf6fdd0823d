package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockNATSClient_PublishDeliversToSubscribers(t *testing.T) {
	client := NewMockNATSClient()
	ctx := context.Background()

	var got [][]byte
	require.NoError(t, client.Subscribe(ctx, "fn.reply", func(_ context.Context, data []byte) {
		got = append(got, data)
	}))
	assert.Equal(t, 1, client.Subscribers("fn.reply"))

	require.NoError(t, client.Publish(ctx, "fn.reply", []byte("a")))
	require.NoError(t, client.Publish(ctx, "fn.other", []byte("b")))

	assert.Equal(t, [][]byte{[]byte("a")}, got)
	assert.Equal(t, 1, client.GetMessageCount("fn.other"))
	assert.Nil(t, client.GetMessages("fn.none"))
}

func TestMockNATSClient_FailAndClose(t *testing.T) {
	client := NewMockNATSClient()
	ctx := context.Background()

	boom := errors.New("boom")
	client.FailPublish(boom)
	assert.ErrorIs(t, client.Publish(ctx, "s", nil), boom)
	client.FailPublish(nil)
	assert.NoError(t, client.Publish(ctx, "s", nil))

	require.NoError(t, client.Close())
	assert.Error(t, client.Publish(ctx, "s", nil))
	assert.Error(t, client.Subscribe(ctx, "s", func(context.Context, []byte) {}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, NewMockNATSClient().Subscribe(cancelled, "s", func(context.Context, []byte) {}), context.Canceled)
}

func TestWaitForMessageCount(t *testing.T) {
	client := NewMockNATSClient()
	go func() {
		for i := 0; i < 3; i++ {
			_ = client.Publish(context.Background(), "s", []byte{byte(i)})
		}
	}()
	WaitForMessageCount(t, client, "s", 3, time.Second)
}

func TestSyncBuffer(t *testing.T) {
	var buf SyncBuffer
	assert.Nil(t, buf.Lines())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = buf.Write([]byte("one\ntwo\n"))
	}()
	wg.Wait()

	assert.Equal(t, []string{"one", "two"}, buf.Lines())
	assert.Equal(t, 8, buf.Len())
	assert.Equal(t, "one\ntwo\n", string(buf.Bytes()))
}
