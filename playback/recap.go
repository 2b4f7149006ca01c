package playback

import (
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

// RecapController rewinds or fast-forwards a Scheduler's cursor.
type RecapController struct {
	scheduler *Scheduler
	logger    *zap.Logger
}

// TriggerRecap rewinds the cursor to the non-recap version preceding the most recent recap run,
// so the scheduler replays the run from its start. Returns false (cursor untouched) if no run is found.
func (c *RecapController) TriggerRecap() bool {
	s := c.scheduler

	target, sawRecap := model.NoVersion, false
	for v := s.currentVersion - 1; v >= 0; v-- {
		snapshot, found := s.queue.Get(v)
		if !found {
			break
		}
		if snapshot.IsRecap {
			sawRecap = true
			continue
		}
		if sawRecap {
			target = v
			break
		}
	}

	if target == model.NoVersion {
		c.logger.Debug("recap not triggered: no recap run found", zap.Int("current_version", int(s.currentVersion)))
		return false
	}

	s.abandonCycle()
	s.currentVersion = target

	c.logger.Info("recap triggered", zap.Int("replay_from", int(target+1)))

	return true
}

// Skip completes every in-flight animation (terminal visual states still apply), clears all pause
// reasons and moves the cursor right below the newest received version.
func (c *RecapController) Skip() {
	s := c.scheduler

	s.abandonCycle()
	for reason := range s.pauseReasons {
		delete(s.pauseReasons, reason)
	}

	maxVersion := s.queue.MaxVersionSeen()
	if maxVersion == model.NoVersion {
		return
	}
	s.currentVersion = maxVersion - 1
	s.resetStall()

	c.logger.Info("skipped to the latest version", zap.Int("version", int(maxVersion)))
}

// CanSkip reports whether a recap is being shown.
func (c *RecapController) CanSkip() bool {
	return c.scheduler.State() == StateRecapActive
}

// NewRecapController creates a new RecapController object.
func NewRecapController(s *Scheduler, logger *zap.Logger) *RecapController {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RecapController{
		scheduler: s,
		logger:    logger,
	}
}
