package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if a.monitor.IsReachable() {
		return "online"
	}
	return "offline"
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Kapture CLI (type 'help' for commands)")

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	scanner := bufio.NewScanner(a.reader)

	for {
		fmt.Fprintf(a.out, "kapture (%s)> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: login, databases, capture, (l)ist, sync, status, suggest, favorite, unfavorite, favorites, exit")
		case "login":
			a.login(ctx)
		case "databases":
			a.databases(ctx, args)
		case "capture":
			a.capture(ctx)
		case "list", "l":
			a.list(ctx)
		case "sync":
			a.sync(ctx)
		case "status":
			a.status(ctx)
		case "suggest":
			a.suggest(ctx)
		case "favorite":
			a.setFavorite(ctx, args, true)
		case "unfavorite":
			a.setFavorite(ctx, args, false)
		case "favorites":
			a.favorites(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
