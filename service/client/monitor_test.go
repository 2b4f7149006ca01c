package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itiky/match-presenter/model"
)

func Test_Monitor_Latency(t *testing.T) {
	m := NewMonitor(time.Hour, zaptest.NewLogger(t))
	start := time.Now()

	m.SnapshotReceived(1, start)
	m.SnapshotReceived(1, start.Add(time.Second))
	m.SnapshotReceived(2, start)
	m.VersionDisplayed(1, start.Add(20*time.Millisecond))
	m.CycleCompleted(1, 400*time.Millisecond)
	m.CommandSent()

	require.InDelta(t, 20.0, m.displayLatency.Avg(), 0.001, "the first arrival counts")
	require.InDelta(t, 400.0, m.cycleDur.Avg(), 0.001)
	require.Len(t, m.arrivals, 1)
	require.Equal(t, 3, m.received)
	require.Equal(t, 1, m.displayed)
	require.Equal(t, 1, m.commands)

	// displayed without an arrival (replay)
	m.VersionDisplayed(model.Version(7), start)
	require.Equal(t, 2, m.displayed)

	m.Start()
	m.Start()
	m.Stop()
}
