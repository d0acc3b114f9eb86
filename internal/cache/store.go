package cache

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

// dateLayout is the on-disk format for retrieval dates.
const dateLayout = "2006-01-02"

// Entry is one cached indicator value with its retrieval date and
// freshness class. History carries the observations the value was
// resolved from, so trend and projection inputs survive a cache hit.
type Entry struct {
	Value       float64                  `json:"value"`
	RetrievedOn string                   `json:"retrieved_on"`
	Frequency   contracts.FrequencyClass `json:"frequency_class"`
	History     map[int]float64          `json:"history,omitempty"`
}

// Store is a file-backed indicator cache. Reads hit the snapshot loaded
// at startup; writes go to a staging map that is merged into the file
// once per run via Flush. The store never fails a pipeline: load and
// flush errors are reported, lookups simply miss.
type Store struct {
	path   string
	logger *logger.Logger

	mu        sync.Mutex
	persisted map[string]Entry
	staging   map[string]Entry

	now func() time.Time
}

// NewStore creates a store backed by the given file path. The file is
// not read until Load is called.
func NewStore(path string, log *logger.Logger) *Store {
	return &Store{
		path:      path,
		logger:    log.WithField("component", "cache"),
		persisted: make(map[string]Entry),
		staging:   make(map[string]Entry),
		now:       time.Now,
	}
}

// WithClock overrides the store's clock. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Key builds the cache key for one entity/indicator pair.
func Key(entity, indicator string) string {
	return entity + ":" + indicator
}

// Load reads the persisted cache file. A missing file is an empty
// cache, not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("path", s.path).Info("No cache file found, starting cold")
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}

	s.persisted = entries
	s.logger.WithField("entries", len(entries)).Info("Loaded indicator cache")

	return nil
}

// Get returns the cached entry regardless of freshness. Staged writes
// from the current run shadow the persisted snapshot.
func (s *Store) Get(entity, indicator string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(entity, indicator)
	if entry, ok := s.staging[key]; ok {
		return entry, true
	}
	entry, ok := s.persisted[key]
	return entry, ok
}

// GetFresh returns the cached entry only when it is still fresh under
// its frequency class.
func (s *Store) GetFresh(entity, indicator string) (Entry, bool) {
	entry, ok := s.Get(entity, indicator)
	if !ok || !s.fresh(entry) {
		return Entry{}, false
	}
	return entry, true
}

// Put stages a value retrieved now. Staged entries become durable on
// the next Flush.
func (s *Store) Put(entity, indicator string, value float64, freq contracts.FrequencyClass) {
	s.PutSeries(entity, indicator, value, freq, nil)
}

// PutSeries stages a value together with the observations it was
// resolved from. The history is copied so later mutation of the source
// series cannot leak into the cache.
func (s *Store) PutSeries(entity, indicator string, value float64, freq contracts.FrequencyClass, history map[int]float64) {
	var copied map[int]float64
	if len(history) > 0 {
		copied = make(map[int]float64, len(history))
		for p, v := range history {
			copied[p] = v
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.staging[Key(entity, indicator)] = Entry{
		Value:       value,
		RetrievedOn: s.now().Format(dateLayout),
		Frequency:   freq,
		History:     copied,
	}
}

// Staged returns the number of entries waiting to be flushed.
func (s *Store) Staged() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staging)
}

// Flush merges staged entries into the persisted snapshot and rewrites
// the cache file atomically. The staging map is cleared on success.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.staging) == 0 {
		return nil
	}

	for key, entry := range s.staging {
		s.persisted[key] = entry
	}

	if err := s.write(); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"staged": len(s.staging),
		"total":  len(s.persisted),
	}).Info("Flushed indicator cache")

	s.staging = make(map[string]Entry)

	return nil
}

// write rewrites the cache file via a temp file and rename so a crash
// mid-write never corrupts the previous snapshot. Caller holds the lock.
func (s *Store) write() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}

// fresh reports whether an entry is still usable without re-fetching.
// Annual entries expire when the calendar year rolls over, weekly
// entries after 7 days, static entries never.
func (s *Store) fresh(entry Entry) bool {
	retrieved, err := time.Parse(dateLayout, entry.RetrievedOn)
	if err != nil {
		return false
	}

	now := s.now()
	switch entry.Frequency {
	case contracts.FreqStatic:
		return true
	case contracts.FreqAnnual:
		return retrieved.Year() == now.Year()
	case contracts.FreqWeekly:
		days := int(now.Sub(retrieved).Hours() / 24)
		return days <= 7
	default:
		return false
	}
}
