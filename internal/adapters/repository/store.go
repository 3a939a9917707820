// Package repository defines the history store interface and its in-memory
// implementation.
package repository

import (
	"context"

	"github.com/treyp/clickhistory/internal/domain/model"
)

// Store provides access to the bounded press history.
type Store interface {
	// Append adds an event to the end of the history, evicting from the
	// front if the capacity bound is exceeded.
	Append(ctx context.Context, e model.Event)

	// Snapshot returns a copy of the current contents in insertion order.
	// Callers never see the live backing slice.
	Snapshot(ctx context.Context) []model.Event

	// Len returns the current number of stored events.
	Len(ctx context.Context) int
}
