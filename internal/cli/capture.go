package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/kapturehq/kapture/internal/models"
)

// capture records a new entry locally. The entry is durable the moment the
// command prints its id; delivery happens in the background when online.
func (a *App) capture(ctx context.Context) {
	suggested, err := a.router.Suggest(ctx, time.Now())
	if err != nil {
		a.log.Warn(ctx, "suggestion lookup failed", "error", err)
	}

	prompt := "- Enter destination id"
	if suggested != nil {
		prompt = fmt.Sprintf("- Enter destination id (Enter for %q)", suggested.Title)
	}
	destID, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		a.log.Error(ctx, "failed to read destination", "error", err)
		return
	}

	destName := destID
	if destID == "" {
		if suggested == nil {
			fmt.Fprintln(a.out, "No destination chosen")
			return
		}
		destID, destName = suggested.ID, suggested.Title
	} else if suggested != nil && destID == suggested.ID {
		destName = suggested.Title
	}

	title, err := GetSimpleText(a.reader, "- Enter title", a.out)
	if err != nil {
		a.log.Error(ctx, "failed to read title", "error", err)
		return
	}
	if title == "" {
		fmt.Fprintln(a.out, "Title must not be empty")
		return
	}

	note, err := GetMultiline(a.reader, "- Enter note text (optional)", a.out)
	if err != nil {
		a.log.Error(ctx, "failed to read note", "error", err)
		return
	}

	props := models.Properties{{ID: "Name", Value: models.Title(title)}}
	if note != "" {
		props = append(props, models.Property{ID: "Note", Value: models.RichText(note)})
	}

	e := models.NewEntry(destID, destName, props)
	if err := a.engine.QueueEntryForSync(ctx, e); err != nil {
		a.log.Error(ctx, "failed to queue entry", "error", err)
		fmt.Fprintln(a.out, "Capture failed:", err)
		return
	}

	a.router.RecordCapture(ctx, destID)
	fmt.Fprintf(a.out, "Captured %s\n", e.ID)
}
