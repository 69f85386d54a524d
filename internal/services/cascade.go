package services

import (
	"context"

	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// Shared cascade helpers. Each deletes the children reachable from one
// record before removing the record itself, so a crash mid-sweep leaves
// orphans only below the point of failure, never above it.

func deleteTaskCascade(ctx context.Context, s store.Store, taskID string) error {
	err := drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.Comment, string, error) {
		return s.Comments().ListByTask(ctx, taskID, opts)
	}, func(c *model.Comment) error {
		return s.Comments().Delete(ctx, c.ID)
	})
	if err != nil {
		return err
	}
	return s.Tasks().Delete(ctx, taskID)
}

func deleteStoryCascade(ctx context.Context, s store.Store, storyID string) error {
	err := drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.Task, string, error) {
		return s.Tasks().ListByStory(ctx, storyID, opts)
	}, func(t *model.Task) error {
		return deleteTaskCascade(ctx, s, t.ID)
	})
	if err != nil {
		return err
	}
	return s.Stories().Delete(ctx, storyID)
}

func deleteReportCascade(ctx context.Context, s store.Store, reportID string) error {
	err := drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.ReportSchedule, string, error) {
		return s.Schedules().ListByReport(ctx, reportID, opts)
	}, func(sc *model.ReportSchedule) error {
		return s.Schedules().Delete(ctx, sc.ID)
	})
	if err != nil {
		return err
	}
	return s.Reports().Delete(ctx, reportID)
}
