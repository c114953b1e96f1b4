package service

import (
	"context"
	"fmt"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/repo"
)

// ExportService assembles a flat export of a user's completed hikes, one row
// per hike with the planned-route fields repeated, most recent first.
type ExportService struct {
	completed repo.CompletedHikeRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(completed repo.CompletedHikeRepo) *ExportService {
	return &ExportService{completed: completed}
}

// Export returns the user's hike history. A user with no completed hikes
// gets an empty slice, not an error.
func (s *ExportService) Export(ctx context.Context, userID string) ([]domain.HikeExportRow, error) {
	const op = "service.ExportService.Export"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w: user_id is required", op, domain.ErrValidation)
	}

	rows, err := s.completed.ListExportRows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}
