package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dkptally/pkg/logger"
	"dkptally/pkg/metrics"
)

const (
	defaultSheetTimeout = 30 * time.Second
	defaultSheetBaseURL = "https://docs.google.com"
)

// SheetProvider fetches roster names from a Google Sheets range through the
// CSV export endpoint. The spreadsheet must be readable by anyone with the
// link; there is no OAuth flow here.
type SheetProvider struct {
	spreadsheetID string
	rangeName     string
	baseURL       string
	client        *http.Client
	log           logger.Logger
}

// Option applies a configuration option to the SheetProvider.
type Option func(*SheetProvider)

// WithHTTPClient sets a custom HTTP client for export requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *SheetProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithBaseURL overrides the export host. Used by tests.
func WithBaseURL(base string) Option {
	return func(p *SheetProvider) {
		if base != "" {
			p.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithLogger sets a custom logger for the provider.
func WithLogger(log logger.Logger) Option {
	return func(p *SheetProvider) {
		if log != nil {
			p.log = log
		}
	}
}

// NewSheetProvider returns a provider for the given spreadsheet and range.
// The range uses A1 notation with an optional sheet prefix, for example
// "DKP Sheet!B3:B".
func NewSheetProvider(spreadsheetID, rangeName string, opts ...Option) *SheetProvider {
	p := &SheetProvider{
		spreadsheetID: spreadsheetID,
		rangeName:     rangeName,
		baseURL:       defaultSheetBaseURL,
		client:        &http.Client{Timeout: defaultSheetTimeout},
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		p.log = logger.Get()
	}
	return p
}

// Names downloads the configured range as CSV and returns its non-empty
// cells in row-major order.
func (p *SheetProvider) Names(ctx context.Context) ([]string, error) {
	if p.spreadsheetID == "" {
		return nil, fmt.Errorf("no spreadsheet configured")
	}

	start := time.Now()
	reqURL := p.exportURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building export request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.RecordErrorByComponent("roster", "sheet_fetch")
		return nil, fmt.Errorf("fetching roster sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordErrorByComponent("roster", "sheet_status")
		return nil, fmt.Errorf("roster sheet export returned %s", resp.Status)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		metrics.RecordErrorByComponent("roster", "sheet_csv")
		return nil, fmt.Errorf("parsing roster sheet csv: %w", err)
	}

	var names []string
	for _, record := range records {
		for _, cell := range record {
			if name := strings.TrimSpace(cell); name != "" {
				names = append(names, name)
			}
		}
	}

	metrics.RecordRosterFetch("sheet")
	metrics.RecordRosterFetchDuration(float64(time.Since(start).Milliseconds()))

	p.log.Debug(ctx, "roster sheet fetched",
		logger.String("range", p.rangeName),
		logger.Int("names", len(names)))
	return names, nil
}

func (p *SheetProvider) exportURL() string {
	sheet, cells := splitRange(p.rangeName)

	q := url.Values{}
	q.Set("tqx", "out:csv")
	if sheet != "" {
		q.Set("sheet", sheet)
	}
	if cells != "" {
		q.Set("range", cells)
	}
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s",
		p.baseURL, url.PathEscape(p.spreadsheetID), q.Encode())
}

// splitRange splits an A1-notation range into its sheet and cell parts.
// Quoted sheet names ('DKP Sheet'!B3:B) lose their quotes.
func splitRange(rangeName string) (sheet, cells string) {
	if i := strings.LastIndex(rangeName, "!"); i >= 0 {
		return strings.Trim(rangeName[:i], "'"), rangeName[i+1:]
	}
	return "", rangeName
}
