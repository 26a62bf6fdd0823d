package health

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		subs []Status
		want State
	}{
		{"empty", nil, StateHealthy},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StateHealthy},
		{"degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StateDegraded},
		{"unhealthy wins", []Status{NewUnhealthy("a", ""), NewDegraded("b", "")}, StateUnhealthy},
		{"unhealthy before degraded", []Status{NewDegraded("a", ""), NewUnhealthy("b", "")}, StateUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("sys", tt.subs)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, "sys", got.Component)
			assert.Len(t, got.SubStatuses, len(tt.subs))
		})
	}
}

func TestFromError(t *testing.T) {
	assert.True(t, FromError("nats", nil).IsHealthy())

	err := stderrors.New("dial nats://user:pw@10.0.0.1:4222 failed, token=abc123")
	status := FromError("nats", err)
	assert.True(t, status.IsUnhealthy())
	assert.NotContains(t, status.Message, "10.0.0.1")
	assert.NotContains(t, status.Message, "abc123")
	assert.Contains(t, status.Message, "[URL]")
	assert.Contains(t, status.Message, "[REDACTED]")
}

func TestMonitor_Check(t *testing.T) {
	m := NewMonitor("edgeipc")
	m.Register("relay", func(context.Context) Status { return NewHealthy("", "running") })
	m.Register("nats", func(context.Context) Status { return NewDegraded("", "reconnecting") })

	assert.Equal(t, []string{"nats", "relay"}, m.Names())

	status := m.Check(context.Background())
	assert.Equal(t, StateDegraded, status.State)
	require.Len(t, status.SubStatuses, 2)
	assert.Equal(t, "nats", status.SubStatuses[0].Component)
	assert.Equal(t, "relay", status.SubStatuses[1].Component)

	m.Remove("nats")
	assert.True(t, m.Check(context.Background()).IsHealthy())
}

func TestMonitor_Handler(t *testing.T) {
	var stopped atomic.Bool
	m := NewMonitor("edgeipc")
	m.Register("relay", func(context.Context) Status {
		if !stopped.Load() {
			return NewHealthy("", "running")
		}
		return NewUnhealthy("", "stopped")
	})

	ts := httptest.NewServer(m.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	var body Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StateHealthy, body.State)

	stopped.Store(true)
	resp, err = http.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
