package storage

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

// DuplicatePolicy decides which payload is kept when a version is delivered twice.
type DuplicatePolicy string

const (
	FirstWriteWins DuplicatePolicy = "first"
	LastWriteWins  DuplicatePolicy = "last"
)

// ParseDuplicatePolicy converts a config value into a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case FirstWriteWins, LastWriteWins:
		return p, nil
	case "":
		return FirstWriteWins, nil
	}

	return "", fmt.Errorf("duplicate policy %q: unknown", s)
}

type (
	// SnapshotQueue is an append-only, version keyed buffer of received snapshots.
	// Entries are never evicted: the player may rewind into history for the whole match.
	SnapshotQueue struct {
		sync.RWMutex
		// Received snapshots by version
		snapshots map[model.Version]*model.Snapshot
		// Payload checksums by version (redelivery diagnostics)
		checksums map[model.Version]string
		// The highest version ever enqueued
		maxVersionSeen model.Version
		// The highest version handed to the presentation (LastWriteWins never replaces these)
		displayed model.Version
		//
		policy DuplicatePolicy
		logger *zap.Logger
	}
)

// Enqueue inserts a snapshot by its version.
// Returns true if the snapshot is now the stored payload for its version.
func (q *SnapshotQueue) Enqueue(s *model.Snapshot) bool {
	if s == nil {
		return false
	}
	if s.VersionNo < 0 {
		q.logger.Warn("snapshot ignored: negative version", zap.Int("version", int(s.VersionNo)))
		return false
	}

	checksum := Checksum(s)

	q.Lock()
	defer q.Unlock()

	if s.VersionNo > q.maxVersionSeen {
		q.maxVersionSeen = s.VersionNo
	}

	if prevChecksum, found := q.checksums[s.VersionNo]; found {
		if prevChecksum == checksum {
			q.logger.Debug("duplicate snapshot ignored", zap.Int("version", int(s.VersionNo)))
			return false
		}

		if q.policy != LastWriteWins || s.VersionNo <= q.displayed {
			q.logger.Warn("redelivered snapshot payload differs, keeping the first one",
				zap.Int("version", int(s.VersionNo)),
				zap.String("kept", prevChecksum),
				zap.String("dropped", checksum),
			)
			return false
		}

		q.logger.Warn("redelivered snapshot payload differs, replacing",
			zap.Int("version", int(s.VersionNo)),
			zap.String("dropped", prevChecksum),
			zap.String("kept", checksum),
		)
	}

	q.snapshots[s.VersionNo] = s
	q.checksums[s.VersionNo] = checksum

	q.logger.Debug("snapshot enqueued",
		zap.Int("version", int(s.VersionNo)),
		zap.Int("max_version_seen", int(q.maxVersionSeen)),
	)

	return true
}

// Get returns the snapshot for the specified version.
func (q *SnapshotQueue) Get(version model.Version) (*model.Snapshot, bool) {
	q.RLock()
	defer q.RUnlock()

	s, found := q.snapshots[version]

	return s, found
}

// Has checks if the version was received.
func (q *SnapshotQueue) Has(version model.Version) bool {
	q.RLock()
	defer q.RUnlock()

	_, found := q.snapshots[version]

	return found
}

// MaxVersionSeen returns the highest version ever received (model.NoVersion if none).
func (q *SnapshotQueue) MaxVersionSeen() model.Version {
	q.RLock()
	defer q.RUnlock()

	return q.maxVersionSeen
}

// Len returns the number of buffered versions.
func (q *SnapshotQueue) Len() int {
	q.RLock()
	defer q.RUnlock()

	return len(q.snapshots)
}

// LowestAbove returns the lowest buffered version greater than the specified one.
func (q *SnapshotQueue) LowestAbove(version model.Version) (model.Version, bool) {
	q.RLock()
	defer q.RUnlock()

	lowest, found := model.NoVersion, false
	for v := range q.snapshots {
		if v > version && (!found || v < lowest) {
			lowest, found = v, true
		}
	}

	return lowest, found
}

// Versions returns all buffered versions in ascending order.
func (q *SnapshotQueue) Versions() []model.Version {
	q.RLock()
	defer q.RUnlock()

	versions := make([]model.Version, 0, len(q.snapshots))
	for v := range q.snapshots {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i] < versions[j]
	})

	return versions
}

// MarkDisplayed records that a version has been handed to the presentation.
func (q *SnapshotQueue) MarkDisplayed(version model.Version) {
	q.Lock()
	defer q.Unlock()

	if version > q.displayed {
		q.displayed = version
	}
}

// NewSnapshotQueue creates a new empty SnapshotQueue object.
func NewSnapshotQueue(policy DuplicatePolicy, logger *zap.Logger) *SnapshotQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = FirstWriteWins
	}

	return &SnapshotQueue{
		snapshots:      make(map[model.Version]*model.Snapshot),
		checksums:      make(map[model.Version]string),
		maxVersionSeen: model.NoVersion,
		displayed:      model.NoVersion,
		policy:         policy,
		logger:         logger,
	}
}
