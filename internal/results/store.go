package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// historyWindow bounds the per-entity daily history kept on disk.
const historyWindow = 30 * 24 * time.Hour

const dateLayout = "2006-01-02"

// DailyPoint is the compact per-day trace kept per entity.
type DailyPoint struct {
	Instability float64 `json:"instability"`
	Stability   float64 `json:"stability"`
	Eudaimonia  float64 `json:"eudaimonia_predictor"`
}

// EntityRecord is the persisted state for one entity: its most recent
// snapshot plus a rolling daily history.
type EntityRecord struct {
	Latest  *contracts.Snapshot   `json:"latest"`
	History map[string]DailyPoint `json:"daily_history"`
}

// File is the on-disk layout of the results document.
type File struct {
	Metadata contracts.RunSummary     `json:"metadata"`
	Results  map[string]*EntityRecord `json:"results"`
}

// Store persists run output to a single JSON document, merging each
// run into the previous state and pruning stale daily history.
type Store struct {
	path   string
	logger *logger.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a results store at the given path.
func NewStore(path string, log *logger.Logger) *Store {
	return &Store{
		path:   path,
		logger: log.WithField("component", "results"),
		now:    time.Now,
	}
}

// WithClock overrides the store's clock. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// SaveRun merges a completed run into the persisted document and
// rewrites it atomically.
func (s *Store) SaveRun(summary contracts.RunSummary, snapshots []*contracts.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	today := s.now().Format(dateLayout)
	for _, snap := range snapshots {
		record, ok := doc.Results[snap.Entity]
		if !ok {
			record = &EntityRecord{History: make(map[string]DailyPoint)}
			doc.Results[snap.Entity] = record
		}
		if record.History == nil {
			record.History = make(map[string]DailyPoint)
		}

		record.Latest = snap
		record.History[today] = DailyPoint{
			Instability: snap.Instability.Value,
			Stability:   snap.Stability.Value,
			Eudaimonia:  snap.Eudaimonia,
		}
		s.prune(record)
	}
	doc.Metadata = summary

	if err := s.write(doc); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"entities": len(snapshots),
		"path":     s.path,
	}).Info("Persisted run results")

	return nil
}

// Latest returns the persisted document. A missing file yields an
// empty document and ok=false.
func (s *Store) Latest() (File, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return File{Results: make(map[string]*EntityRecord)}, false, nil
	}

	doc, err := s.load()
	if err != nil {
		return File{}, false, err
	}
	return doc, true, nil
}

// Entity returns one entity's persisted record.
func (s *Store) Entity(code string) (*EntityRecord, bool, error) {
	doc, ok, err := s.Latest()
	if err != nil || !ok {
		return nil, false, err
	}
	record, ok := doc.Results[code]
	return record, ok, nil
}

// load reads the current document; a missing file is an empty one.
// Caller holds the lock.
func (s *Store) load() (File, error) {
	doc := File{Results: make(map[string]*EntityRecord)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("failed to read results file: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse results file: %w", err)
	}
	if doc.Results == nil {
		doc.Results = make(map[string]*EntityRecord)
	}

	return doc, nil
}

// prune drops daily history entries older than the rolling window.
func (s *Store) prune(record *EntityRecord) {
	cutoff := s.now().Add(-historyWindow)
	for day := range record.History {
		ts, err := time.Parse(dateLayout, day)
		if err != nil || ts.Before(cutoff) {
			delete(record.History, day)
		}
	}
}

// write replaces the results file via temp file and rename.
func (s *Store) write(doc File) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace results file: %w", err)
	}

	return nil
}
