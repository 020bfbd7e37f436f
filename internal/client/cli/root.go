package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := a.session.Snapshot()
	if s.User == nil {
		return ""
	}
	name := s.User.Username
	if s.Provisional {
		// shown until the provider confirms the restored session
		name += "?"
	}
	return fmt.Sprintf("(%s) ", name)
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to FlixFlex CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	states, cancelSub := a.session.Subscribe()
	defer cancelSub()
	go func() {
		var last string
		for s := range states {
			switch {
			case s.User != nil && !s.Provisional && s.User.Username != last:
				last = s.User.Username
				fmt.Fprintf(a.out, "\nsigned in as %s\n", last)
			case s.User == nil && last != "":
				last = ""
				fmt.Fprintln(a.out, "\nsigned out")
			}
		}
	}()

	for {
		fmt.Fprintf(a.out, "flixflex %s> ", a.getStatus())
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
			a.help()
		case "login":
			a.login(ctx)
		case "loginu":
			a.loginUsername(ctx)
		case "register":
			a.register(ctx)
		case "logout":
			a.logout(ctx)
		case "forgot":
			a.forgot(ctx)
		case "check":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: check <username>")
				continue
			}
			a.check(ctx, args[0])
		case "whoami":
			a.whoami()
		case "popular":
			a.popularMovies(ctx, args)
		case "toprated":
			a.topRatedMovies(ctx, args)
		case "tv":
			a.popularTV(ctx, args)
		case "search":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: search <query>")
				continue
			}
			a.search(ctx, strings.Join(args, " "))
		case "movie":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: movie <id>")
				continue
			}
			a.movieDetails(ctx, args[0])
		case "show":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: show <id>")
				continue
			}
			a.showDetails(ctx, args[0])
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	if a.session.Snapshot().Authenticated() {
		fmt.Fprintln(a.out, "Available commands: popular, toprated, tv, search, movie, show, whoami, logout, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: login, loginu, register, forgot, check, popular, toprated, tv, search, movie, show, exit")
	}
}
