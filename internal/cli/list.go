package cli

import (
	"context"
	"fmt"

	"github.com/kapturehq/kapture/internal/models"
)

const listLimit = 20

func (a *App) list(ctx context.Context) {
	items, err := a.entries.List(ctx, listLimit)
	if err != nil {
		a.log.Error(ctx, "failed to list entries", "error", err)
		return
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "Nothing captured yet")
		return
	}
	for _, e := range items {
		line := fmt.Sprintf("%s  %-8s  %s  %s",
			e.ID, e.Status, e.CreatedAt.Format("2006-01-02 15:04"), e.DestinationName)
		if e.Status == models.StatusFailed {
			line += fmt.Sprintf("  (%d attempts: %s)", e.RetryCount, e.LastError)
		}
		fmt.Fprintln(a.out, line)
	}
}

func (a *App) sync(ctx context.Context) {
	if err := a.engine.SyncPending(ctx); err != nil {
		a.log.Error(ctx, "dispatch pass failed", "error", err)
		return
	}
	fmt.Fprintln(a.out, "Sync pass finished")
}

func (a *App) status(ctx context.Context) {
	fmt.Fprintf(a.out, "Connectivity: %s\n", a.getStatus())

	counts, err := a.entries.CountByStatus(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to count entries", "error", err)
		return
	}
	for _, s := range []models.SyncStatus{models.StatusPending, models.StatusSynced, models.StatusFailed, models.StatusConflict} {
		if n := counts[s]; n > 0 {
			fmt.Fprintf(a.out, "%-8s %d\n", s, n)
		}
	}
}
