package storage

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/itiky/match-presenter/model"
)

const (
	recordingFormatVersion = 1
	recordingExt           = ".match"
)

type (
	// Recording is a match's snapshot stream in ascending version order.
	Recording struct {
		MatchId   uuid.UUID
		Players   [2]string
		Snapshots []*model.Snapshot
	}

	// recordingMetadata prefixes the encoded snapshots.
	recordingMetadata struct {
		MatchId    uuid.UUID
		Players    [2]string
		Timestamp  time.Time
		Version    int
		StateCount int
	}

	// recordedSnapshot stores the winner apart: gob drops a pointer to a zero value (model.Self).
	recordedSnapshot struct {
		Snapshot *model.Snapshot
		Winner   int
	}
)

const noWinner = -1

// NewRecordingFromQueue builds a Recording from every version buffered by the queue.
func NewRecordingFromQueue(matchId uuid.UUID, players [2]string, q *SnapshotQueue) *Recording {
	r := &Recording{
		MatchId: matchId,
		Players: players,
	}
	for _, v := range q.Versions() {
		if s, found := q.Get(v); found {
			r.Snapshots = append(r.Snapshots, s)
		}
	}

	return r
}

// Size returns the number of recorded snapshots.
func (r *Recording) Size() int {
	return len(r.Snapshots)
}

// FileName returns the file name used by SaveToFile.
func (r *Recording) FileName() string {
	return r.MatchId.String() + recordingExt
}

// SaveToFile saves the recording to a gzipped file within the directory and returns the file path.
func (r *Recording) SaveToFile(directory string) (string, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	filePath := filepath.Join(directory, r.FileName())
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := recordingMetadata{
		MatchId:    r.MatchId,
		Players:    r.Players,
		Timestamp:  time.Now().UTC(),
		Version:    recordingFormatVersion,
		StateCount: len(r.Snapshots),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}

	for i, s := range r.Snapshots {
		entry := recordedSnapshot{Snapshot: s, Winner: noWinner}
		if s.Winner != nil {
			entry.Winner = int(*s.Winner)
		}
		if err := encoder.Encode(&entry); err != nil {
			return "", fmt.Errorf("encoding snapshot %d: %w", i, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return "", fmt.Errorf("closing gzip writer: %w", err)
	}

	return filePath, nil
}

// LoadRecording loads a recording saved by Recording.SaveToFile.
func LoadRecording(filePath string) (*Recording, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file (%s): %w", filePath, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata recordingMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if metadata.Version != recordingFormatVersion {
		return nil, fmt.Errorf("unsupported recording version: %d", metadata.Version)
	}

	r := &Recording{
		MatchId:   metadata.MatchId,
		Players:   metadata.Players,
		Snapshots: make([]*model.Snapshot, 0, metadata.StateCount),
	}
	for i := 0; i < metadata.StateCount; i++ {
		entry := recordedSnapshot{}
		if err := decoder.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decoding snapshot %d: %w", i, err)
		}
		s := entry.Snapshot
		if s == nil {
			// gob omits an all-zero struct
			s = &model.Snapshot{}
		}
		s.Winner = nil
		if entry.Winner != noWinner {
			winner := model.PlayerIndex(entry.Winner)
			s.Winner = &winner
		}
		r.Snapshots = append(r.Snapshots, s)
	}

	return r, nil
}
