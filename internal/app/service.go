// Package service wires the scoring pipeline behind one façade:
// sanitize, slice, validate, resolve, score, persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dkptally/internal/adapters/catalog"
	"dkptally/internal/adapters/repository"
	rosterfeed "dkptally/internal/adapters/roster"
	"dkptally/internal/domain/ledger"
	"dkptally/internal/domain/model"
	"dkptally/internal/domain/points"
	"dkptally/internal/domain/resolve"
	"dkptally/internal/domain/roster"
	"dkptally/internal/domain/sanitize"
	"dkptally/internal/domain/validate"
	"dkptally/pkg/logger"
	"dkptally/pkg/metrics"
)

// Service implements the scoring workflow on top of the catalog, roster
// and run store adapters.
type Service struct {
	// Core components
	catalog  *catalog.Catalog
	store    repository.Store
	roster   rosterfeed.Provider
	resolver resolve.Func

	// Configuration
	location *time.Location

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the run store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRoster sets the roster provider.
func WithRoster(provider rosterfeed.Provider) Option {
	return func(s *Service) {
		if provider != nil {
			s.roster = provider
		}
	}
}

// WithResolver sets the callback invoked for unresolved participant
// tokens. The default discards every unknown token.
func WithResolver(fn resolve.Func) Option {
	return func(s *Service) {
		if fn != nil {
			s.resolver = fn
		}
	}
}

// WithLocation sets the timezone used to interpret log timestamps.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service over the given catalog directory.
func New(cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:  cat,
		resolver: resolve.Discard,
		location: time.Local,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewFileStore(cat.BaseDir(), repository.WithLogger(s.logger))
	}
	return s
}

// Request describes one scoring pass over a raw log.
type Request struct {
	// Lines is the raw log, one element per line.
	Lines []string
	// Start and End bound the scored window when UseAll is false.
	Start time.Time
	End   time.Time
	// UseAll scores every line regardless of its date.
	UseAll bool
}

// Result carries everything a scoring pass produced. Totals and Events
// stay empty whenever Errors has entries.
type Result struct {
	Totals     []ledger.Total
	Sanity     model.SanityCheck
	Errors     *validate.Errors
	BossCounts map[string]map[string]int
	BossList   []string
	Events     []model.PendingEvent
}

// Calculate runs the full pipeline over req. Validation failures come
// back inside Result.Errors with no scores attached; only infrastructure
// failures (catalog, roster, resolver) surface as errors.
func (s *Service) Calculate(ctx context.Context, req Request) (*Result, error) {
	p, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	lines := p.window(req)
	sanity := sanitize.BuildSanityCheck(lines)
	metrics.RecordLinesSanitized(len(lines))

	formatted, verrs := validate.New(p.ext, p.points).Validate(lines)
	if verrs.Any() {
		s.reportErrors(ctx, verrs)
		return &Result{Sanity: sanity, Errors: verrs}, nil
	}

	engine := resolve.NewEngine(p.names, p.persisted, s.meteredResolver(),
		resolve.WithAliasPersister(s.catalog))
	metrics.UpdateSuggestionIndexSize(engine.SuggestionCount())
	builder := ledger.NewBuilder()

	lineMap := make(map[int]string, len(lines))
	for _, ln := range lines {
		lineMap[ln.Index] = ln.Text
	}

	for _, fl := range formatted {
		pts, ok := p.points.Points(fl.Tokens[0])
		if !ok {
			// The table changed between validation and scoring.
			verrs.BossLines = append(verrs.BossLines, fl.Index)
			continue
		}
		boss := points.NormalizeKey(fl.Tokens[0])

		text := lineMap[fl.Index]
		resolved, err := engine.ResolveLine(ctx, fl.Tokens[1:], resolve.LineContext{
			Boss:     boss,
			Prefix:   linePrefix(text),
			PrevLine: lineMap[fl.Index-1],
			NextLine: lineMap[fl.Index+1],
		})
		if err != nil {
			return nil, fmt.Errorf("resolving line %d: %w", fl.Index, err)
		}

		when, hasTime := p.ext.Extract(text)
		builder.Apply(model.PendingEvent{
			EventTime:  when,
			Boss:       boss,
			Points:     pts,
			Entries:    ledger.Entries(resolved, pts),
			SourceLine: text,
		}, hasTime)
	}

	if verrs.Any() {
		s.reportErrors(ctx, verrs)
		return &Result{Sanity: sanity, Errors: verrs}, nil
	}

	res := &Result{
		Totals:     builder.Totals(),
		Sanity:     sanity,
		Errors:     verrs,
		BossCounts: builder.BossCounts(),
		BossList:   builder.BossList(),
		Events:     builder.PendingEvents(),
	}

	metrics.RecordRunCalculated()
	s.logger.Info(ctx, "scoring pass complete",
		logger.Int("lines", len(lines)),
		logger.Int("events", len(res.Events)),
		logger.Int("players", len(res.Totals)))
	return res, nil
}

// EstimateUnknown counts the distinct participant tokens a scoring pass
// would have to prompt for, without invoking the resolver. Lines that do
// not validate contribute nothing.
func (s *Service) EstimateUnknown(ctx context.Context, req Request) (int, []string, error) {
	p, err := s.prepare(ctx)
	if err != nil {
		return 0, nil, err
	}

	lines := p.window(req)
	formatted, verrs := validate.New(p.ext, p.points).Validate(lines)
	if verrs.Any() {
		return 0, nil, nil
	}

	aliases := roster.BuildAliases(p.names, p.persisted)
	seen := map[string]struct{}{}
	var unknown []string
	for _, fl := range formatted {
		for _, tok := range fl.Tokens[1:] {
			if tok == model.MultiNotMarker || tok == model.NotToken || len(tok) <= 1 {
				continue
			}
			if _, ok := aliases[tok]; ok {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			unknown = append(unknown, tok)
		}
	}
	return len(unknown), unknown, nil
}

// SaveRun persists a successful scoring pass as a new run, superseding
// active events inside the [start, end] window.
func (s *Service) SaveRun(ctx context.Context, res *Result, start, end time.Time, sourcePath string) (model.RunMeta, error) {
	if res == nil || (res.Errors != nil && res.Errors.Any()) {
		return model.RunMeta{}, errors.New("cannot save a run with validation errors")
	}

	runID := uuid.NewString()
	created := time.Now().UTC()
	events := ledger.Records(res.Events, runID, created)

	meta := model.RunMeta{
		RunID:      runID,
		CreatedUTC: created,
		StartUTC:   start.UTC(),
		EndUTC:     end.UTC(),
		EventCount: len(events),
		SourcePath: sourcePath,
	}
	if err := s.store.SaveRun(ctx, meta, events); err != nil {
		return model.RunMeta{}, err
	}
	return meta, nil
}

// Runs returns the recorded run history, oldest first.
func (s *Service) Runs(ctx context.Context) ([]model.RunMeta, error) {
	return s.store.Runs(ctx)
}

// Weekly builds the per-week attendance report from active events.
func (s *Service) Weekly(ctx context.Context) (*ledger.WeeklyReport, error) {
	events, err := s.store.ActiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.BuildWeekly(events), nil
}

// pipeline bundles the loaded inputs of one pass.
type pipeline struct {
	points    *points.Store
	sanitizer *sanitize.Sanitizer
	ext       *sanitize.Extractor
	names     []string
	persisted map[string]string
}

func (s *Service) prepare(ctx context.Context) (*pipeline, error) {
	store, err := s.catalog.PointsStore()
	if err != nil {
		return nil, err
	}
	bossAliases, err := s.catalog.BossAliases()
	if err != nil {
		return nil, err
	}
	persisted, err := s.catalog.NameAliases()
	if err != nil {
		return nil, err
	}

	if s.roster == nil {
		return nil, errors.New("no roster provider configured")
	}
	names, err := s.roster.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}

	return &pipeline{
		points:    store,
		sanitizer: sanitize.NewSanitizer(bossAliases),
		ext:       sanitize.NewExtractor(sanitize.WithLocation(s.location)),
		names:     names,
		persisted: persisted,
	}, nil
}

// window sanitizes the raw lines and clips them to the requested range.
func (p *pipeline) window(req Request) []model.Line {
	lines := p.sanitizer.Lines(req.Lines)
	if req.UseAll {
		return lines
	}
	return p.ext.SliceByDate(lines, req.Start, req.End)
}

// meteredResolver wraps the configured resolver with prompt metrics.
func (s *Service) meteredResolver() resolve.Func {
	fn := s.resolver
	return func(ctx context.Context, req resolve.Request) (*resolve.Resolution, error) {
		metrics.RecordResolvePrompt()
		res, err := fn(ctx, req)
		metrics.RecordResolveOutcome(outcomeLabel(res, err))
		return res, err
	}
}

func outcomeLabel(res *resolve.Resolution, err error) string {
	switch {
	case err != nil:
		return "error"
	case res == nil:
		return "discard"
	case res.Reprocess:
		return "reprocess"
	case res.AddNew:
		return "add_new"
	case res.MergeWithPrev:
		return "merge_prev"
	case res.MergeWithNext:
		return "merge_next"
	default:
		return "accept"
	}
}

func (s *Service) reportErrors(ctx context.Context, verrs *validate.Errors) {
	for _, cat := range verrs.Categories() {
		metrics.RecordValidationErrors(cat.Name, len(cat.Lines))
	}
	s.logger.Warn(ctx, "validation failed, no scores computed",
		logger.Int("categories", len(verrs.Categories())))
}

// linePrefix returns the text before the entry segment of a line, without
// its trailing ":".
func linePrefix(text string) string {
	if i := strings.LastIndex(text, ":"); i >= 0 {
		return text[:i]
	}
	return ""
}
