// Package temporal starts export archive workflows on a Temporal cluster.
package temporal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/ports"
	"github.com/samirrijal/missionsketch/internal/workflows"
)

// WorkflowStarter is the part of client.Client the archiver needs.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Archiver implements ports.ExportArchiver by starting an
// ArchiveExportWorkflow per delivered file. It does not wait for the
// workflow to finish.
type Archiver struct {
	starter   WorkflowStarter
	taskQueue string
	now       func() time.Time
}

var _ ports.ExportArchiver = (*Archiver)(nil)

// NewArchiver creates an archiver. An empty taskQueue uses workflows.TaskQueue.
func NewArchiver(starter WorkflowStarter, taskQueue string) *Archiver {
	if taskQueue == "" {
		taskQueue = workflows.TaskQueue
	}
	return &Archiver{starter: starter, taskQueue: taskQueue, now: time.Now}
}

// Dial connects to Temporal.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial %s: %w", hostPort, err)
	}
	return c, nil
}

func (a *Archiver) Archive(ctx context.Context, missionID string, file domain.ExportFile) error {
	in := workflows.NewArchiveInput(uuid.NewString(), missionID, file, a.now().UTC())
	opts := client.StartWorkflowOptions{
		ID:        "archive-export-" + in.ID,
		TaskQueue: a.taskQueue,
	}
	run, err := a.starter.ExecuteWorkflow(ctx, opts, workflows.ArchiveExportWorkflow, in)
	if err != nil {
		return fmt.Errorf("start archive workflow: %w", err)
	}
	if run != nil {
		slog.DebugContext(ctx, "archive workflow started", "workflow", run.GetID(), "run", run.GetRunID(), "mission", missionID)
	}
	return nil
}
