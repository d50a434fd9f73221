package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) suggest(ctx context.Context) {
	d, err := a.router.Suggest(ctx, time.Now())
	if err != nil {
		a.log.Error(ctx, "suggestion lookup failed", "error", err)
		return
	}
	if d == nil {
		fmt.Fprintln(a.out, "No suggestion yet, capture something first")
		return
	}
	fmt.Fprintf(a.out, "Suggested: %s (%s)\n", d.Title, d.ID)

	recent, err := a.router.Suggestions(ctx, 5)
	if err != nil {
		return
	}
	for _, r := range recent {
		if r.ID == d.ID {
			continue
		}
		fmt.Fprintf(a.out, "Also used recently: %s (%s)\n", r.Title, r.ID)
	}
}

func (a *App) setFavorite(ctx context.Context, args []string, favorite bool) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: favorite <destination-id>")
		return
	}
	if err := a.prefs.SetFavorite(ctx, args[0], favorite); err != nil {
		a.log.Error(ctx, "failed to update favorite", "destination", args[0], "error", err)
		return
	}
	if favorite {
		fmt.Fprintln(a.out, "Marked as favorite:", args[0])
	} else {
		fmt.Fprintln(a.out, "Removed favorite:", args[0])
	}
}

func (a *App) favorites(ctx context.Context) {
	favs, err := a.prefs.Favorites(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to list favorites", "error", err)
		return
	}
	if len(favs) == 0 {
		fmt.Fprintln(a.out, "No favorites yet")
		return
	}
	for _, f := range favs {
		fmt.Fprintf(a.out, "%s  (used %d times)\n", f.DestinationID, f.UsageCount)
	}
}
