package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/flixflex/flixflex/internal/flagx"
	"github.com/flixflex/flixflex/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "10s" or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	CatalogBaseURL string         `json:"catalog_base_url"`
	CatalogToken   string         `json:"catalog_token"`
	CacheDBPath    string         `json:"cache_db_path"`
	RemoteTimeout  timex.Duration `json:"remote_timeout"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Absent file path means no JSON is loaded. Read or unmarshal errors panic;
// only fields present in the file override defaults.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.CatalogBaseURL != "" {
		cfg.CatalogBaseURL = jc.CatalogBaseURL
	}
	if jc.CatalogToken != "" {
		cfg.CatalogToken = jc.CatalogToken
	}
	if jc.CacheDBPath != "" {
		cfg.CacheDBPath = jc.CacheDBPath
	}
	if jc.RemoteTimeout.Duration != 0 {
		cfg.RemoteTimeout = time.Duration(jc.RemoteTimeout.Duration)
	}
}
