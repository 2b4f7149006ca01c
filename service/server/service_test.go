package server

import (
	"math/rand"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/storage"
)

// Test checks every index is delivered and never leaves its window.
func Test_DeliveryOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	require.Equal(t, []int{0, 1, 2, 3}, DeliveryOrder(4, 0, false, rng))
	require.Equal(t, []int{0, 0, 1, 1, 2, 2}, DeliveryOrder(3, 1, true, rng))
	require.Empty(t, DeliveryOrder(0, 3, true, rng))

	const n, window = 23, 5
	order := DeliveryOrder(n, window, true, rng)
	t.Logf("Order: %v", order)
	require.Len(t, order, n+(n+window-1)/window)

	seen := make(map[int]bool)
	for pos, idx := range order {
		seen[idx] = true

		// position within the window run (window entries + 1 redelivery)
		windowNo := pos / (window + 1)
		require.Equal(t, windowNo, idx/window, "index %d left its window", idx)
	}
	require.Len(t, seen, n)

	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	require.Equal(t, 0, sorted[0])
	require.Equal(t, n-1, sorted[len(sorted)-1])
}

func newTestRecording(t *testing.T) *storage.Recording {
	rec, err := storage.GenerateMatch(storage.MatchGenOptions{Rounds: 1, DeckSize: 6, HandSize: 2, Seed: 3})
	require.NoError(t, err)

	return rec
}

// Test connects to the feed and reads the whole match.
func Test_MatchFeed_Session(t *testing.T) {
	rec := newTestRecording(t)
	feed, err := NewMatchFeed(Config{ShuffleWindow: 3, Redeliver: true, Seed: 5}, rec, zaptest.NewLogger(t))
	require.NoError(t, err)
	feed.Start()

	srv := httptest.NewServer(feed)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	read := func() model.Message {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		msg, err := model.DecodeMessage(raw)
		require.NoError(t, err)

		return msg
	}

	start, ok := read().(*model.MatchStart)
	require.True(t, ok)
	require.Equal(t, rec.Players[0], start.Name1)

	expected := DeliveryOrder(rec.Size(), 3, true, rand.New(rand.NewSource(5)))
	received := make(map[model.Version]bool)
	for i := range expected {
		ts, ok := read().(*model.TransmitState)
		require.True(t, ok, "message %d", i)
		require.Equal(t, rec.Snapshots[expected[i]].VersionNo, ts.State.VersionNo, "message %d", i)
		received[ts.State.VersionNo] = true
	}
	require.Len(t, received, rec.Size())

	// commands are accepted, exit ends the session
	for _, msg := range []model.Message{model.PassTurn{VersionNo: 3}, model.Emote{}, model.ExitMatch{}} {
		raw, err := model.EncodeMessage(msg)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err, "session not closed after exitMatch")
	conn.Close()

	feed.Stop()
}

func Test_MatchFeed_Config(t *testing.T) {
	_, err := NewMatchFeed(Config{}, nil, nil)
	require.Error(t, err)

	_, err = NewMatchFeed(Config{SendPeriod: -1}, newTestRecording(t), nil)
	require.Error(t, err)

	_, err = NewMatchFeed(Config{ShuffleWindow: -1}, newTestRecording(t), nil)
	require.Error(t, err)
}
