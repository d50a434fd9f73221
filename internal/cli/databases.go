package cli

import (
	"context"
	"fmt"
)

// databases lists the databases shared with the integration. "databases
// refresh" bypasses the cache.
func (a *App) databases(ctx context.Context, args []string) {
	force := len(args) > 0 && args[0] == "refresh"

	dests, err := a.dests.List(ctx, force)
	if err != nil {
		a.log.Error(ctx, "failed to list databases", "error", err)
		fmt.Fprintln(a.out, "Could not list databases:", err)
		return
	}

	if len(dests) == 0 {
		fmt.Fprintln(a.out, "No databases shared with this integration")
		return
	}
	for _, d := range dests {
		fmt.Fprintf(a.out, "%s  %s\n", d.ID, d.Title)
	}
}
