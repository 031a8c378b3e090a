package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the default task queue of the archive worker.
const TaskQueue = "mission-exports"

// ArchiveExportWorkflow stores a delivered export and announces it. If the
// announcement fails the stored export is deleted again (saga compensation),
// so listeners never miss an archived file.
func ArchiveExportWorkflow(ctx workflow.Context, in ArchiveInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting archive workflow", "id", in.ID, "mission", in.MissionID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})

	if err := workflow.ExecuteActivity(ctx, "StoreExport", in).Get(ctx, nil); err != nil {
		return err
	}

	if err := workflow.ExecuteActivity(ctx, "PublishExported", in).Get(ctx, nil); err != nil {
		logger.Warn("announcement failed, compensating", "id", in.ID, "error", err)
		if cerr := workflow.ExecuteActivity(ctx, "DeleteExport", in.ID).Get(ctx, nil); cerr != nil {
			logger.Error("compensation failed", "id", in.ID, "error", cerr)
		}
		return err
	}

	logger.Info("Export archived", "id", in.ID)
	return nil
}
