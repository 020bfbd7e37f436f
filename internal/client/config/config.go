package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerBaseURL: base URL of the identity/profile backend.
//   - CatalogBaseURL: base URL of the movie catalog API.
//   - CatalogToken: bearer token for the catalog API.
//   - CacheDBPath: path of the local sqlite cache file.
//   - RemoteTimeout: upper bound for every remote call.
type Config struct {
	ServerBaseURL  string
	CatalogBaseURL string
	CatalogToken   string
	CacheDBPath    string
	RemoteTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.CatalogBaseURL = "https://api.themoviedb.org/3"
	c.CacheDBPath = "flixflex.db"
	c.RemoteTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
