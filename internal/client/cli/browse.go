package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/flixflex/flixflex/internal/client/catalog"
)

func parsePage(args []string) int {
	if len(args) == 0 {
		return 1
	}
	page, err := strconv.Atoi(args[0])
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (a *App) printMovies(p *catalog.MoviePage) {
	if len(p.Results) == 0 {
		fmt.Fprintln(a.out, "Nothing found")
		return
	}
	for _, m := range p.Results {
		fmt.Fprintf(a.out, "%8d  %-40s  %.1f (%s)\n", m.ID, m.Title, m.VoteAverage, m.ReleaseDate)
	}
	fmt.Fprintf(a.out, "page %d of %d\n", p.Page, p.TotalPages)
}

func (a *App) printTV(p *catalog.TVPage) {
	if len(p.Results) == 0 {
		fmt.Fprintln(a.out, "Nothing found")
		return
	}
	for _, s := range p.Results {
		fmt.Fprintf(a.out, "%8d  %-40s  %.1f (%s)\n", s.ID, s.Name, s.VoteAverage, s.FirstAirDate)
	}
	fmt.Fprintf(a.out, "page %d of %d\n", p.Page, p.TotalPages)
}

func (a *App) popularMovies(ctx context.Context, args []string) {
	p, err := a.catalog.PopularMovies(ctx, parsePage(args))
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	a.printMovies(p)
}

func (a *App) topRatedMovies(ctx context.Context, args []string) {
	p, err := a.catalog.TopRatedMovies(ctx, parsePage(args))
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	a.printMovies(p)
}

func (a *App) popularTV(ctx context.Context, args []string) {
	p, err := a.catalog.PopularTV(ctx, parsePage(args))
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	a.printTV(p)
}

func (a *App) search(ctx context.Context, query string) {
	movies, err := a.catalog.SearchMovies(ctx, query, 1)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	shows, err := a.catalog.SearchTV(ctx, query, 1)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	fmt.Fprintln(a.out, "Movies:")
	a.printMovies(movies)
	fmt.Fprintln(a.out, "TV:")
	a.printTV(shows)
}

func (a *App) movieDetails(ctx context.Context, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: movie <id>")
		return
	}

	d, err := a.catalog.MovieDetails(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	fmt.Fprintf(a.out, "%s (%s)\n", d.Title, d.ReleaseDate)
	if d.Tagline != "" {
		fmt.Fprintf(a.out, "%q\n", d.Tagline)
	}
	fmt.Fprintf(a.out, "rating %.1f, %d min\n", d.VoteAverage, d.Runtime)
	for _, g := range d.Genres {
		fmt.Fprintf(a.out, "[%s] ", g.Name)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, d.Overview)
	if poster := a.catalog.ImageURL(d.PosterPath, ""); poster != "" {
		fmt.Fprintf(a.out, "poster: %s\n", poster)
	}
	a.printExtras(d.Videos.Results, d.Credits.Cast)
	if len(d.Similar.Results) > 0 {
		fmt.Fprintln(a.out, "Similar:")
		for _, m := range d.Similar.Results {
			fmt.Fprintf(a.out, "  %8d  %s\n", m.ID, m.Title)
		}
	}
}

func (a *App) showDetails(ctx context.Context, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return
	}

	d, err := a.catalog.TVDetails(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	fmt.Fprintf(a.out, "%s (%s)\n", d.Name, d.FirstAirDate)
	fmt.Fprintf(a.out, "rating %.1f, %d seasons / %d episodes\n", d.VoteAverage, d.NumberOfSeasons, d.NumberOfEpisodes)
	fmt.Fprintln(a.out, d.Overview)
	a.printExtras(d.Videos.Results, d.Credits.Cast)
	if len(d.Similar.Results) > 0 {
		fmt.Fprintln(a.out, "Similar:")
		for _, s := range d.Similar.Results {
			fmt.Fprintf(a.out, "  %8d  %s\n", s.ID, s.Name)
		}
	}
}

func (a *App) printExtras(videos []catalog.Video, cast []catalog.CastMember) {
	for _, v := range videos {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			fmt.Fprintf(a.out, "trailer: https://youtu.be/%s\n", v.Key)
			break
		}
	}
	if len(cast) > 0 {
		fmt.Fprint(a.out, "Cast: ")
		limit := len(cast)
		if limit > 5 {
			limit = 5
		}
		for i := 0; i < limit; i++ {
			if i > 0 {
				fmt.Fprint(a.out, ", ")
			}
			fmt.Fprintf(a.out, "%s as %s", cast[i].Name, cast[i].Character)
		}
		fmt.Fprintln(a.out)
	}
}
