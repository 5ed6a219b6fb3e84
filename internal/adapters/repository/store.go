// Package repository persists the append-only run history.
package repository

import (
	"context"

	"dkptally/internal/domain/model"
)

// Document is the on-disk shape of the run history.
type Document struct {
	Version int                 `json:"version"`
	Runs    []model.RunMeta     `json:"runs"`
	Events  []model.EventRecord `json:"events"`
}

// Store provides append-only access to scored runs and their events.
type Store interface {
	// SaveRun appends a run and its events. Active events whose event time
	// falls inside the run window are superseded first.
	SaveRun(ctx context.Context, meta model.RunMeta, events []model.EventRecord) error

	// Runs returns every recorded run, oldest first.
	Runs(ctx context.Context) ([]model.RunMeta, error)

	// ActiveEvents returns the events no later run has superseded, oldest first.
	ActiveEvents(ctx context.Context) ([]model.EventRecord, error)
}
