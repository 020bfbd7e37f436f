package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/flixflex/flixflex/internal/flagx"
	"github.com/flixflex/flixflex/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations can
// be given either as strings like "15m" or as integer nanoseconds.
type JsonConfig struct {
	ListenAddr      string         `json:"listen_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	MongoURI        string         `json:"mongo_uri"`
	MongoDatabase   string         `json:"mongo_database"`
	SecretKey       string         `json:"secret_key"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL timex.Duration `json:"refresh_token_ttl"`
	ResetTokenTTL   timex.Duration `json:"reset_token_ttl"`
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

	if jc.ListenAddr != "" {
		cfg.ListenAddr = jc.ListenAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.MongoURI != "" {
		cfg.MongoURI = jc.MongoURI
	}
	if jc.MongoDatabase != "" {
		cfg.MongoDatabase = jc.MongoDatabase
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenTTL.Duration != 0 {
		cfg.AccessTokenTTL = time.Duration(jc.AccessTokenTTL.Duration)
	}
	if jc.RefreshTokenTTL.Duration != 0 {
		cfg.RefreshTokenTTL = time.Duration(jc.RefreshTokenTTL.Duration)
	}
	if jc.ResetTokenTTL.Duration != 0 {
		cfg.ResetTokenTTL = time.Duration(jc.ResetTokenTTL.Duration)
	}
}
