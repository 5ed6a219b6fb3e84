package resolve

import "context"

// Resolution is the decision an external resolver hands back for one
// unresolved participant token.
type Resolution struct {
	// Names are the replacement names, in order. The engine registers
	// unknown ones so later tokens resolve without another prompt.
	Names []string
	// CacheOriginal maps the original token to the resolved name for the
	// rest of the run.
	CacheOriginal bool
	// AddNew registers Names[0] as a brand-new participant.
	AddNew bool
	// PersistAlias additionally writes the token → name mapping to durable
	// alias storage.
	PersistAlias bool
	// MergeWithPrev joins the token with its predecessor; the name already
	// appended for the predecessor is withdrawn.
	MergeWithPrev bool
	// MergeWithNext joins the token with its successor, consuming it.
	MergeWithNext bool
	// Reprocess splices Names back into the token stream as strict tokens
	// and rewinds the cursor so they pass through resolution themselves.
	Reprocess bool
}

// Request is the context handed to the resolver for one unresolved token.
type Request struct {
	Token       string
	Suggestions []string
	Line        string
	PrevMerge   string
	NextMerge   string
	PrevLine    string
	NextLine    string
}

// Func is the pipeline's single suspension point. Returning (nil, nil)
// discards the token; an error aborts the whole invocation.
type Func func(ctx context.Context, req Request) (*Resolution, error)

// Discard is a Func that drops every unresolved token. Useful for
// non-interactive hosts and tests.
func Discard(context.Context, Request) (*Resolution, error) {
	return nil, nil
}
