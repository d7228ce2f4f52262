package grab

import (
	"context"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

// Recorder persists accepted claims. *sqlite.SQLiteStore satisfies it.
type Recorder interface {
	RecordClaim(ctx context.Context, claim storage.Claim) (*models.SubOrder, error)
}

// NoopRecorder accepts every claim without persisting it.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordClaim(_ context.Context, _ storage.Claim) (*models.SubOrder, error) {
	return nil, nil
}
