package report

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// Snapshot is the progress view published after every completed citation task.
type Snapshot struct {
	Processed  int `json:"processed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ProgressSink receives snapshots during a run. Publish is called from worker
// goroutines and must be safe for concurrent use. Clear is called once after
// the run ends.
type ProgressSink interface {
	Publish(Snapshot)
	Clear()
}

// NopSink discards snapshots.
type NopSink struct{}

func (NopSink) Publish(Snapshot) {}
func (NopSink) Clear()           {}

// MemorySink keeps the latest snapshot for in-process polling.
type MemorySink struct {
	mu      sync.RWMutex
	current Snapshot
	active  bool
}

// Publish stores the snapshot.
func (s *MemorySink) Publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
	s.active = true
}

// Clear marks the sink inactive.
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Current returns the latest snapshot and whether a run is active.
func (s *MemorySink) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.active
}

// FileSink mirrors each snapshot to a JSON file for external pollers.
// The file is removed when the run ends.
type FileSink struct {
	Path   string
	Logger *slog.Logger
}

// Publish writes the snapshot file.
func (s *FileSink) Publish(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil && s.Logger != nil {
		s.Logger.Warn("failed to write progress file", "path", s.Path, "error", err)
	}
}

// Clear removes the snapshot file.
func (s *FileSink) Clear() {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) && s.Logger != nil {
		s.Logger.Warn("failed to remove progress file", "path", s.Path, "error", err)
	}
}

// MultiSink fans snapshots out to several sinks.
type MultiSink []ProgressSink

func (m MultiSink) Publish(snap Snapshot) {
	for _, s := range m {
		s.Publish(snap)
	}
}

func (m MultiSink) Clear() {
	for _, s := range m {
		s.Clear()
	}
}

var (
	_ ProgressSink = NopSink{}
	_ ProgressSink = (*MemorySink)(nil)
	_ ProgressSink = (*FileSink)(nil)
	_ ProgressSink = MultiSink{}
)
