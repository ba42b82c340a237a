package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/internal/repository"
)

// ReportService produces the admin dashboard aggregation.
type ReportService struct {
	reportRepo repository.ReportRepository
	logger     *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ReportRepository, logger *slog.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// Summary returns store-wide totals, the per-day order series and the
// per-category product counts.
func (s *ReportService) Summary(ctx context.Context) (*domain.Summary, error) {
	summary, err := s.reportRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	return summary, nil
}
