package client

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itiky/match-presenter/animation"
	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/playback"
	"github.com/itiky/match-presenter/presentation"
	"github.com/itiky/match-presenter/service/server"
	"github.com/itiky/match-presenter/storage"
)

type testEnv struct {
	recording *storage.Recording
	feed      *server.MatchFeed
	srv       *httptest.Server
	headless  *presentation.Headless
	client    *Client
}

func newTestEnv(t *testing.T, feedCfg server.Config, recordDir string) *testEnv {
	logger := zaptest.NewLogger(t)

	rec, err := storage.GenerateMatch(storage.MatchGenOptions{Rounds: 2, DeckSize: 8, HandSize: 3, Seed: 11})
	require.NoError(t, err)

	feed, err := server.NewMatchFeed(feedCfg, rec, logger.Named("server"))
	require.NoError(t, err)
	feed.Start()
	srv := httptest.NewServer(feed)

	headless := presentation.NewHeadless(logger.Named("presentation"))
	c, err := NewClient(Config{
		ServerURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		TickRate:  200,
		Animation: animation.Config{
			Duration:    time.Millisecond,
			StaggerUnit: 0,
		},
		Settings:        playback.Settings{Autopass: true},
		DuplicatePolicy: storage.FirstWriteWins,
		RecordDir:       recordDir,
	}, headless.Context(), logger.Named("client"))
	require.NoError(t, err)

	env := &testEnv{
		recording: rec,
		feed:      feed,
		srv:       srv,
		headless:  headless,
		client:    c,
	}
	t.Cleanup(func() {
		env.client.Stop()
		env.feed.Stop()
		env.srv.Close()
	})

	return env
}

func (e *testEnv) lastVersion() model.Version {
	return e.recording.Snapshots[e.recording.Size()-1].VersionNo
}

// Test plays a whole match delivered out of order with duplicates.
func Test_Client_PlaysMatch(t *testing.T) {
	env := newTestEnv(t, server.Config{ShuffleWindow: 4, Redeliver: true, Seed: 2}, "")
	env.client.Start()

	require.Eventually(t, func() bool {
		return env.client.Cursor().CurrentVersion == env.lastVersion()
	}, 10*time.Second, 10*time.Millisecond)

	displayed := env.headless.Displayed()
	require.Len(t, displayed, env.recording.Size())
	for i, v := range displayed {
		require.Equal(t, model.Version(i), v, "display order")
	}

	messages := env.headless.Messages()
	require.NotEmpty(t, messages)
	require.Contains(t, messages[0], "opponent found")
}

// Test sends user commands through the worker.
func Test_Client_Commands(t *testing.T) {
	env := newTestEnv(t, server.Config{}, "")
	env.client.Start()

	require.Eventually(t, func() bool {
		return env.client.Cursor().CurrentVersion == env.lastVersion()
	}, 10*time.Second, 10*time.Millisecond)

	before := len(env.headless.Messages())
	env.client.Submit("status")
	env.client.Submit("teleport")
	env.client.Submit("play x")
	env.client.Submit("mulligan 0 2")
	env.client.Submit("pass")
	env.client.Submit("")

	require.Eventually(t, func() bool {
		return len(env.headless.Messages()) == before+3
	}, 5*time.Second, 10*time.Millisecond)
	messages := env.headless.Messages()[before:]
	require.Contains(t, messages[0], "version")
	require.Contains(t, messages[1], "unknown command")

	env.client.Submit("pause")
	require.Eventually(t, func() bool {
		return env.client.Cursor().Paused
	}, 5*time.Second, 10*time.Millisecond)
	env.client.Submit("resume")
	require.Eventually(t, func() bool {
		return !env.client.Cursor().Paused
	}, 5*time.Second, 10*time.Millisecond)

	env.client.Submit("exit")
	select {
	case <-env.client.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client did not exit")
	}
}

// Test saves the received snapshots on Stop.
func Test_Client_Recording(t *testing.T) {
	dir := t.TempDir()
	env := newTestEnv(t, server.Config{}, dir)
	env.client.Start()

	require.Eventually(t, func() bool {
		return env.client.Cursor().MaxVersionSeen == env.lastVersion()
	}, 10*time.Second, 10*time.Millisecond)
	env.client.Stop()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rec, err := storage.LoadRecording(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Equal(t, env.recording.Size(), rec.Size())
	require.Equal(t, env.recording.Players, rec.Players)
	for i := range rec.Snapshots {
		require.Equal(t, storage.Checksum(env.recording.Snapshots[i]), storage.Checksum(rec.Snapshots[i]), "v%d", i)
	}
}

func Test_Client_Config(t *testing.T) {
	headless := presentation.NewHeadless(nil)

	_, err := NewClient(Config{TickRate: 0}, headless.Context(), nil)
	require.Error(t, err)

	_, err = NewClient(Config{TickRate: 60, Animation: animation.DefaultConfig()}, presentation.Context{}, nil)
	require.Error(t, err)

	// nothing listens there
	_, err = NewClient(Config{
		ServerURL: "ws://127.0.0.1:1/match",
		TickRate:  60,
		Animation: animation.DefaultConfig(),
	}, headless.Context(), nil)
	require.Error(t, err)
}
