package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dkptally/internal/domain/model"
	"dkptally/pkg/logger"
	"dkptally/pkg/metrics"
)

const (
	runsDir        = "runs"
	historyFile    = "events.json"
	currentVersion = 1
)

// FileStore keeps the run history in a single JSON document under the
// catalog directory. Every write goes through a temp file and rename so a
// crash mid-save never leaves a truncated history behind.
//
// The store assumes one process per base directory. The mutex only guards
// concurrent use within that process.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  logger.Logger
}

// NewFileStore returns a store rooted at baseDir. The history document
// lives at baseDir/runs/events.json and is created on first save.
func NewFileStore(baseDir string, opts ...Option) *FileStore {
	s := &FileStore{
		path: filepath.Join(baseDir, runsDir, historyFile),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Path returns the location of the history document.
func (s *FileStore) Path() string {
	return s.path
}

// SaveRun supersedes active events inside the run window, then appends the
// run and its events and rewrites the document.
func (s *FileStore) SaveRun(ctx context.Context, meta model.RunMeta, events []model.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)

	superseded := 0
	for i := range doc.Events {
		ev := &doc.Events[i]
		if !ev.Active || ev.EventUTC.IsZero() {
			continue
		}
		if ev.EventUTC.Before(meta.StartUTC) || ev.EventUTC.After(meta.EndUTC) {
			continue
		}
		id := meta.RunID
		ev.Active = false
		ev.ReplacedBy = &id
		superseded++
	}

	doc.Runs = append(doc.Runs, meta)
	doc.Events = append(doc.Events, events...)

	if err := s.persist(doc); err != nil {
		return fmt.Errorf("saving run %s: %w", meta.RunID, err)
	}

	metrics.RecordRunSaved()
	metrics.RecordEventsAppended(len(events))
	metrics.RecordEventsSuperseded(superseded)

	s.log.Info(ctx, "run saved",
		logger.String("runID", meta.RunID),
		logger.Int("events", len(events)),
		logger.Int("superseded", superseded))
	return nil
}

// Runs returns every recorded run, oldest first.
func (s *FileStore) Runs(ctx context.Context) ([]model.RunMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	out := make([]model.RunMeta, len(doc.Runs))
	copy(out, doc.Runs)
	return out, nil
}

// ActiveEvents returns the events no later run has superseded, oldest first.
func (s *FileStore) ActiveEvents(ctx context.Context) ([]model.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	out := make([]model.EventRecord, 0, len(doc.Events))
	for _, ev := range doc.Events {
		if ev.Active {
			out = append(out, ev)
		}
	}
	return out, nil
}

// load reads the history document. A missing file is normal on first use;
// an unreadable or corrupt one is logged and replaced by a fresh document
// so one bad save never bricks the tool.
func (s *FileStore) load(ctx context.Context) *Document {
	doc := &Document{Version: currentVersion}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(ctx, "unreadable run history, starting fresh",
				logger.String("path", s.path),
				logger.Error(err))
		}
		return doc
	}

	if err := json.Unmarshal(raw, doc); err != nil {
		s.log.Warn(ctx, "corrupt run history, starting fresh",
			logger.String("path", s.path),
			logger.Error(err))
		return &Document{Version: currentVersion}
	}
	if doc.Version == 0 {
		doc.Version = currentVersion
	}
	return doc
}

func (s *FileStore) persist(doc *Document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating runs directory: %w", err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, historyFile+".*")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}
