package sanitize

import (
	"time"

	"dkptally/internal/domain/model"
)

// DefaultWindow is the slice span applied when no explicit end is given.
const DefaultWindow = 7 * 24 * time.Hour

// SliceByDate returns the contiguous run of lines whose timestamps fall in
// [start, end). The batch is assumed chronologically ordered; lines without
// a parseable date inherit membership from their dated neighbours. A zero
// end defaults to start plus DefaultWindow.
func (e *Extractor) SliceByDate(lines []model.Line, start, end time.Time) []model.Line {
	if end.IsZero() {
		end = start.Add(DefaultWindow)
	}

	startIdx := 0
	endIdx := -1

	// Scan backward: the last dated line before end closes the range, the
	// first dated line before start bounds it from below.
	for i := len(lines) - 1; i >= 0; i-- {
		ts, ok := e.Extract(lines[i].Text)
		if !ok {
			continue
		}
		if endIdx == -1 {
			if !ts.Before(end) {
				continue
			}
			endIdx = i
		}
		if ts.Before(start) {
			if i == endIdx {
				return nil
			}
			startIdx = i + 1
			break
		}
	}

	if endIdx < startIdx {
		return nil
	}
	out := make([]model.Line, endIdx-startIdx+1)
	copy(out, lines[startIdx:endIdx+1])
	return out
}

// BuildSanityCheck summarises a sliced batch for operator review.
func BuildSanityCheck(lines []model.Line) model.SanityCheck {
	sc := model.SanityCheck{TotalLines: len(lines)}
	if len(lines) > 0 {
		sc.FirstEntry = lines[0].Text
		sc.LastEntry = lines[len(lines)-1].Text
	}
	return sc
}
