package repository

import (
	"context"
	"errors"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// AvailabilitySource defines the contract for querying free timeslots of one store.
type AvailabilitySource interface {
	// Fetch returns the free timeslots of the store. An empty slice is a valid result.
	// Failures are reported as *SourceError.
	Fetch(ctx context.Context, store model.StoreCode) ([]model.Timeslot, error)
}

// StatusStore keeps the report of the most recent cycle.
type StatusStore interface {
	// Save replaces the latest report.
	Save(ctx context.Context, report *model.CycleReport) error

	// Latest returns the latest report, or ErrNotFound before the first cycle finished.
	Latest(ctx context.Context) (*model.CycleReport, error)
}

// MessageQueue defines the contract for publishing messages to a broker.
type MessageQueue interface {
	// Publish sends the message to the configured exchange.
	Publish(ctx context.Context, m *model.Message) error
}
