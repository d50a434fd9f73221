package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/kapturehq/kapture/internal/common"
)

// login stores the integration token and verifies it with a database search.
func (a *App) login(ctx context.Context) {
	token, err := GetToken(a.out)
	if err != nil {
		a.log.Error(ctx, "failed to read token", "error", err)
		return
	}
	if token == "" {
		fmt.Fprintln(a.out, "No token entered")
		return
	}

	if err := a.tokens.Save(token); err != nil {
		a.log.Error(ctx, "failed to store token", "error", err)
		return
	}
	a.dests.Invalidate()

	dests, err := a.dests.List(ctx, true)
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			fmt.Fprintln(a.out, "Token rejected by the API")
			return
		}
		fmt.Fprintln(a.out, "Token saved, but the API is not reachable right now")
		return
	}

	fmt.Fprintf(a.out, "Logged in, %d database(s) shared with this integration\n", len(dests))
}
