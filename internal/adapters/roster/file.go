package roster

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dkptally/pkg/metrics"
)

// FileProvider reads the roster from a local text file, one name per line.
type FileProvider struct {
	path string
}

// NewFileProvider returns a provider backed by the file at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Names returns the non-empty lines of the roster file, top to bottom.
func (p *FileProvider) Names(ctx context.Context) ([]string, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		metrics.RecordErrorByComponent("roster", "file_read")
		return nil, fmt.Errorf("reading roster file: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(raw), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}

	metrics.RecordRosterFetch("file")
	return names, nil
}
