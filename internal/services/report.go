package services

import (
	"context"
	"time"

	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// ReportService handles generated reports and their schedules. Deleting a
// report sweeps its schedules.
type ReportService struct {
	store store.Store
	now   func() time.Time
}

func NewReportService(s store.Store) *ReportService {
	return &ReportService{store: s, now: time.Now}
}

func (s *ReportService) CreateReport(ctx context.Context, r *model.Report) (*model.Report, error) {
	if _, err := s.store.Projects().GetByID(ctx, r.ProjectID); err != nil {
		return nil, err
	}
	return s.store.Reports().Create(ctx, r)
}

func (s *ReportService) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	return s.store.Reports().GetByID(ctx, reportID)
}

func (s *ReportService) ListReports(ctx context.Context, projectID string, opts store.ListOptions) ([]*model.Report, string, error) {
	return s.store.Reports().ListByProject(ctx, projectID, opts)
}

func (s *ReportService) ListReportsByCreator(ctx context.Context, userID string, opts store.ListOptions) ([]*model.Report, string, error) {
	return s.store.Reports().ListByCreator(ctx, userID, opts)
}

func (s *ReportService) DeleteReport(ctx context.Context, reportID string) error {
	if _, err := s.store.Reports().GetByID(ctx, reportID); err != nil {
		return err
	}
	return deleteReportCascade(ctx, s.store, reportID)
}

// ScheduleReport registers a recurring re-generation of an existing report.
func (s *ReportService) ScheduleReport(ctx context.Context, reportID string, freq model.ScheduleFrequency, recipients []string) (*model.ReportSchedule, error) {
	rep, err := s.store.Reports().GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return s.store.Schedules().Create(ctx, &model.ReportSchedule{
		ReportID:   rep.ID,
		ProjectID:  rep.ProjectID,
		Frequency:  freq,
		Recipients: recipients,
		NextRunAt:  nextRun(s.now(), freq),
	})
}

func (s *ReportService) ListSchedules(ctx context.Context, projectID string, opts store.ListOptions) ([]*model.ReportSchedule, string, error) {
	return s.store.Schedules().ListByProject(ctx, projectID, opts)
}

func (s *ReportService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	return s.store.Schedules().Delete(ctx, scheduleID)
}

// MarkScheduleRun advances a schedule's next-run time after a delivery.
func (s *ReportService) MarkScheduleRun(ctx context.Context, scheduleID string) (*model.ReportSchedule, error) {
	return s.store.Schedules().Update(ctx, scheduleID, func(sc *model.ReportSchedule) error {
		sc.NextRunAt = nextRun(s.now(), sc.Frequency)
		return nil
	})
}

func nextRun(now time.Time, freq model.ScheduleFrequency) time.Time {
	switch freq {
	case model.ScheduleDaily:
		return now.Add(24 * time.Hour)
	case model.ScheduleWeekly:
		return now.Add(7 * 24 * time.Hour)
	default:
		// sprint_end schedules fire when a sprint closes, not on a clock;
		// keep a far-future placeholder so sweep queries skip them.
		return now.Add(365 * 24 * time.Hour)
	}
}
