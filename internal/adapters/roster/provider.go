// Package roster fetches the guild roster from its configured source.
package roster

import "context"

// Provider returns the roster names in sheet order, blanks removed.
type Provider interface {
	Names(ctx context.Context) ([]string, error)
}
