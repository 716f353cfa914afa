package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/audit"
)

// ErrInvalidTimeRange is returned when from is after to.
var ErrInvalidTimeRange = errors.New("invalid time range")

type ReportServiceImpl struct {
	auditRepo audit.Repository
}

func NewReportService(auditRepo audit.Repository) *ReportServiceImpl {
	return &ReportServiceImpl{auditRepo: auditRepo}
}

func (s *ReportServiceImpl) ArchivedLogs(ctx context.Context, from, to time.Time, limit, offset int) ([]*audit.Entry, int64, error) {
	if from.After(to) {
		return nil, 0, fmt.Errorf("%w: %s is after %s", ErrInvalidTimeRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	entries, err := s.auditRepo.FindByTimeRange(ctx, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.auditRepo.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *ReportServiceImpl) Rejections(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*audit.Rejection, int64, error) {
	rejections, err := s.auditRepo.ListRejections(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.auditRepo.CountRejections(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	return rejections, total, nil
}

var _ ReportService = (*ReportServiceImpl)(nil)
