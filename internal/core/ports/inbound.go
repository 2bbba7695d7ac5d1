package ports

import (
	"context"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

// ClaimProcessor runs the full adjudication pipeline for one submission.
type ClaimProcessor interface {
	Process(ctx context.Context, docs []domain.RawDocument) (*domain.ClaimResult, error)
}
