package config

import (
	"flag"
	"os"
	"time"

	"github.com/flixflex/flixflex/internal/flagx"
)

// EnvCatalogToken names the environment variable carrying the catalog API
// bearer token.
const EnvCatalogToken = "FLIXFLEX_TMDB_TOKEN"

func parseEnv(cfg *Config) {
	if token := os.Getenv(EnvCatalogToken); token != "" {
		cfg.CatalogToken = token
	}
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-t string   catalog API bearer token
//	-d string   path of the local cache database
//	-o int      remote call timeout in seconds
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend server")
	fs.StringVar(&cfg.CatalogToken, "t", cfg.CatalogToken, "catalog API bearer token")
	fs.StringVar(&cfg.CacheDBPath, "d", cfg.CacheDBPath, "path of the local cache database")
	remoteTimeout := fs.Int("o", int(cfg.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
}
