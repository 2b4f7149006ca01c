package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itiky/match-presenter/animation"
	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/presentation"
	"github.com/itiky/match-presenter/storage"
)

const frame = 60 * time.Millisecond

type (
	// recordingSink keeps the sent commands.
	recordingSink struct {
		sent []model.Message
		err  error
	}

	// harness drives a Scheduler with a fake clock.
	harness struct {
		t         *testing.T
		now       time.Time
		queue     *storage.SnapshotQueue
		headless  *presentation.Headless
		sink      *recordingSink
		scheduler *Scheduler
		recap     *RecapController
	}
)

func (s *recordingSink) Send(msg model.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)

	return nil
}

func (s *recordingSink) passes() []model.Version {
	var versions []model.Version
	for _, msg := range s.sent {
		if pass, ok := msg.(model.PassTurn); ok {
			versions = append(versions, pass.VersionNo)
		}
	}

	return versions
}

func newHarness(t *testing.T, cfg Config) *harness {
	logger := zaptest.NewLogger(t)
	h := &harness{
		t:        t,
		now:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		queue:    storage.NewSnapshotQueue(storage.FirstWriteWins, logger),
		headless: presentation.NewHeadless(logger),
		sink:     &recordingSink{},
	}

	orchestrator, err := animation.NewOrchestrator(animation.Config{
		Duration:    100 * time.Millisecond,
		StaggerUnit: 50 * time.Millisecond,
	}, h.headless.Context(), logger)
	require.NoError(t, err)

	h.scheduler, err = NewScheduler(cfg, h.queue, orchestrator, h.headless.Context(), h.sink, logger)
	require.NoError(t, err)
	h.recap = NewRecapController(h.scheduler, logger)

	return h
}

func (h *harness) enqueue(snapshots ...*model.Snapshot) {
	for _, s := range snapshots {
		h.queue.Enqueue(s)
	}
}

// run ticks the scheduler n frames.
func (h *harness) run(n int) {
	for i := 0; i < n; i++ {
		h.now = h.now.Add(frame)
		h.scheduler.Tick(h.now)
	}
}

// drawnSnapshot is a snapshot where the local player draws a card (one animation op).
func drawnSnapshot(version model.Version) *model.Snapshot {
	card := model.CardRef{Id: int(version) + 100}

	return &model.Snapshot{
		VersionNo: version,
		Priority:  model.Opponent,
		Players: [2]model.PlayerZones{
			{Hand: []model.CardRef{card}},
		},
		Animations: [2][]model.ZoneAnimation{
			{{Card: &card, From: model.ZoneDeck, To: model.ZoneHand}},
		},
	}
}

func plainSnapshot(version model.Version, isRecap bool) *model.Snapshot {
	return &model.Snapshot{
		VersionNo: version,
		Priority:  model.Opponent,
		IsRecap:   isRecap,
	}
}

// Test delivers versions out of order: they must be shown strictly one by one.
func Test_Scheduler_StrictOrdering(t *testing.T) {
	h := newHarness(t, Config{})
	require.Equal(t, StateWaiting, h.scheduler.Tick(h.now))
	require.Equal(t, model.NoVersion, h.scheduler.CurrentVersion())

	h.enqueue(drawnSnapshot(2), drawnSnapshot(0), drawnSnapshot(3))
	h.run(20)

	require.Equal(t, []model.Version{0}, h.headless.Displayed(), "v2 shown before v1")
	require.Equal(t, model.Version(0), h.scheduler.CurrentVersion())
	require.Equal(t, model.Version(3), h.scheduler.Cursor().MaxVersionSeen)

	h.enqueue(drawnSnapshot(1))
	h.run(20)

	require.Equal(t, []model.Version{0, 1, 2, 3}, h.headless.Displayed())
	require.Equal(t, model.Version(3), h.scheduler.CurrentVersion())
	require.Equal(t, StateWaiting, h.scheduler.State())
}

// Test plays A from the hand to the story and checks the cursor once the animation landed.
func Test_Scheduler_EndToEnd(t *testing.T) {
	h := newHarness(t, Config{Settings: Settings{Autopass: true}})

	cardA := model.CardRef{Id: 1, Name: "A", Cost: 2}
	cardB := model.CardRef{Id: 2, Name: "B", Cost: 1}
	v0 := &model.Snapshot{
		VersionNo:         0,
		Players:           [2]model.PlayerZones{{Hand: []model.CardRef{cardA, cardB}}},
		Priority:          model.Self,
		MulligansComplete: [2]bool{true, true},
		CardCosts:         []int{2, 1},
		Breath:            [2]int{3, 3},
	}
	v1 := &model.Snapshot{
		VersionNo: 1,
		Players: [2]model.PlayerZones{
			{Hand: []model.CardRef{cardB}, Story: []model.CardRef{cardA}},
		},
		Animations: [2][]model.ZoneAnimation{
			{{Card: &cardA, From: model.ZoneHand, FromIndex: 0, To: model.ZoneStory, ToIndex: 0}},
		},
		Priority:          model.Opponent,
		MulligansComplete: [2]bool{true, true},
		CardCosts:         []int{1},
		Breath:            [2]int{3, 3},
	}
	h.enqueue(v0)
	h.run(2)
	require.Equal(t, model.Version(0), h.scheduler.CurrentVersion())

	h.enqueue(v1)
	h.run(1)
	require.Equal(t, StateAnimating, h.scheduler.State())
	require.Equal(t, model.Version(0), h.scheduler.CurrentVersion(), "cursor moved before the animation landed")

	h.run(5)
	require.Equal(t, model.Version(1), h.scheduler.CurrentVersion())
	require.Equal(t, []string{animation.SoundPlay}, h.headless.Sounds())
	require.Empty(t, h.sink.sent, "playable cards: no autopass")

	obj, found := h.headless.Object(model.Self, model.ZoneStory, 0)
	require.True(t, found)
	require.True(t, obj.Visible)
}

// Test checks autopass is sent once the cycle completed and only once per version, recap replays included.
func Test_Scheduler_Autopass(t *testing.T) {
	h := newHarness(t, Config{Settings: Settings{Autopass: true}})

	v0 := plainSnapshot(0, false)
	v0.MulligansComplete = [2]bool{true, true}
	v3 := plainSnapshot(3, false)
	v3.Priority = model.Self
	v3.MulligansComplete = [2]bool{true, true}
	v3.CardCosts = []int{5}
	v3.Breath = [2]int{1, 1}
	h.enqueue(v0, plainSnapshot(1, true), plainSnapshot(2, true), v3)

	h.run(10)
	require.Equal(t, model.Version(3), h.scheduler.CurrentVersion())
	require.Equal(t, []model.Version{3}, h.sink.passes())

	require.True(t, h.recap.TriggerRecap())
	h.run(10)
	require.Equal(t, []model.Version{0, 1, 2, 3, 1, 2, 3}, h.headless.Displayed())
	require.Equal(t, []model.Version{3}, h.sink.passes(), "autopass re-sent on replay")
}

// Test checks the recap rewind target: the non-recap version preceding the last recap run.
func Test_RecapController_TriggerRecap(t *testing.T) {
	h := newHarness(t, Config{})
	h.enqueue(plainSnapshot(0, false), plainSnapshot(1, true), plainSnapshot(2, true), plainSnapshot(3, false))
	h.run(10)
	require.Equal(t, model.Version(3), h.scheduler.CurrentVersion())

	require.True(t, h.recap.TriggerRecap())
	require.Equal(t, model.Version(0), h.scheduler.CurrentVersion())

	// replaying: recap snapshots are skippable
	h.run(1)
	require.Equal(t, StateRecapActive, h.scheduler.State())
	require.True(t, h.recap.CanSkip())
}

func Test_RecapController_NoRecap(t *testing.T) {
	h := newHarness(t, Config{})
	h.enqueue(plainSnapshot(0, false), plainSnapshot(1, false), plainSnapshot(2, false))
	h.run(10)

	require.False(t, h.recap.TriggerRecap())
	require.Equal(t, model.Version(2), h.scheduler.CurrentVersion())
	require.False(t, h.recap.CanSkip())

	// recap run starting at version 0: nothing precedes it
	h = newHarness(t, Config{})
	h.enqueue(plainSnapshot(0, true), plainSnapshot(1, true), plainSnapshot(2, false))
	h.run(10)

	require.False(t, h.recap.TriggerRecap())
	require.Equal(t, model.Version(2), h.scheduler.CurrentVersion())
}

// Test skips to the newest version while animating and paused.
func Test_RecapController_Skip(t *testing.T) {
	h := newHarness(t, Config{})
	for v := model.Version(0); v <= 5; v++ {
		h.enqueue(drawnSnapshot(v))
	}
	h.run(1)
	require.Equal(t, StateAnimating, h.scheduler.State())
	h.scheduler.Pause("menu")

	h.recap.Skip()
	require.Equal(t, model.Version(4), h.scheduler.CurrentVersion())
	require.False(t, h.scheduler.Paused())

	// the in-flight animation resolved its terminal state
	obj, _ := h.headless.Object(model.Self, model.ZoneHand, 0)
	require.True(t, obj.Visible)
	created, destroyed := h.headless.ProxyStats()
	require.Equal(t, created, destroyed)

	// idempotent
	h.recap.Skip()
	require.Equal(t, model.Version(4), h.scheduler.CurrentVersion())

	h.run(10)
	require.Equal(t, []model.Version{0, 5}, h.headless.Displayed())
	require.Equal(t, model.Version(5), h.scheduler.CurrentVersion())
}

// Test checks pause reasons don't release each other.
func Test_Scheduler_PauseReasons(t *testing.T) {
	h := newHarness(t, Config{})
	h.scheduler.Pause("menu")
	h.scheduler.Pause("story")
	h.scheduler.Pause("story")

	h.enqueue(plainSnapshot(0, false))
	h.run(3)
	require.Empty(t, h.headless.Displayed())
	require.Equal(t, StatePaused, h.scheduler.State())

	h.scheduler.Resume("menu")
	h.run(3)
	require.Empty(t, h.headless.Displayed())
	require.True(t, h.scheduler.Cursor().Paused)

	h.scheduler.Resume("story")
	h.scheduler.Resume("unknown")
	h.run(3)
	require.Equal(t, []model.Version{0}, h.headless.Displayed())
}

// Test checks the gap watchdog notifies once and keeps waiting.
func Test_Scheduler_StallNotify(t *testing.T) {
	h := newHarness(t, Config{Stall: StallPolicy{Timeout: time.Second, Action: StallNotify}})

	// nothing buffered ahead: never a stall
	h.enqueue(plainSnapshot(0, false))
	h.run(40)
	require.Empty(t, h.headless.Messages())

	h.enqueue(plainSnapshot(2, false))
	h.run(10)
	require.Empty(t, h.headless.Messages())

	h.run(40)
	require.Len(t, h.headless.Messages(), 1)
	require.Equal(t, model.Version(0), h.scheduler.CurrentVersion())

	h.enqueue(plainSnapshot(1, false))
	h.run(3)
	require.Equal(t, []model.Version{0, 1, 2}, h.headless.Displayed())
	require.Len(t, h.headless.Messages(), 1)
}

// Test checks the gap watchdog jumps over missing versions.
func Test_Scheduler_StallJump(t *testing.T) {
	h := newHarness(t, Config{Stall: StallPolicy{Timeout: time.Second, Action: StallJump}})
	h.enqueue(plainSnapshot(0, false), plainSnapshot(3, false), plainSnapshot(4, false))

	h.run(10)
	require.Equal(t, []model.Version{0}, h.headless.Displayed())

	h.run(20)
	require.Equal(t, []model.Version{0, 3, 4}, h.headless.Displayed())
	require.Equal(t, model.Version(4), h.scheduler.CurrentVersion())
}

func Test_Scheduler_StallBlock(t *testing.T) {
	h := newHarness(t, Config{Stall: StallPolicy{Timeout: time.Second, Action: StallBlock}})
	h.enqueue(plainSnapshot(0, false), plainSnapshot(2, false))

	h.run(100)
	require.Equal(t, []model.Version{0}, h.headless.Displayed())
	require.Empty(t, h.headless.Messages())

	action, err := ParseStallAction("")
	require.NoError(t, err)
	require.Equal(t, StallBlock, action)
	_, err = ParseStallAction("panic")
	require.Error(t, err)
}

// Test checks outbound commands carry the current version.
func Test_Scheduler_Commands(t *testing.T) {
	h := newHarness(t, Config{})
	h.enqueue(plainSnapshot(0, false), plainSnapshot(1, false))
	h.run(5)

	require.NoError(t, h.scheduler.PlayCard(2))
	require.NoError(t, h.scheduler.PassTurn())
	require.NoError(t, h.scheduler.Mulligan([3]bool{true, false, true}))
	require.NoError(t, h.scheduler.Emote())
	require.NoError(t, h.scheduler.ExitMatch())
	require.Error(t, h.scheduler.PlayCard(-1))

	require.Equal(t, []model.Message{
		model.PlayCard{CardNum: 2, VersionNo: 1},
		model.PassTurn{VersionNo: 1},
		model.Mulligan{Mulligan: [3]bool{true, false, true}},
		model.Emote{},
		model.ExitMatch{},
	}, h.sink.sent)

	h.sink.err = errors.New("connection closed")
	err := h.scheduler.PassTurn()
	require.Error(t, err)
	require.ErrorIs(t, err, h.sink.err)
}

func Test_Scheduler_Config(t *testing.T) {
	headless := presentation.NewHeadless(nil)
	queue := storage.NewSnapshotQueue("", nil)
	orchestrator, err := animation.NewOrchestrator(animation.DefaultConfig(), headless.Context(), nil)
	require.NoError(t, err)

	_, err = NewScheduler(Config{}, nil, orchestrator, headless.Context(), &recordingSink{}, nil)
	require.Error(t, err)
	_, err = NewScheduler(Config{}, queue, orchestrator, headless.Context(), nil, nil)
	require.Error(t, err)
	_, err = NewScheduler(Config{Stall: StallPolicy{Timeout: -1}}, queue, orchestrator, headless.Context(), &recordingSink{}, nil)
	require.Error(t, err)

	require.Equal(t, "RECAP_ACTIVE", StateRecapActive.String())
	require.Equal(t, "WAITING", StateWaiting.String())
}
