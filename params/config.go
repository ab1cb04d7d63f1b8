// Package params loads the simulator process's runtime configuration
// from environment variables and an optional .env file, the way
// uhyunpark-hyperlicked/params/config.go does for its node process.
package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server holds the HTTP/WebSocket listener configuration.
type Server struct {
	Addr string
}

// Store holds the embedded persistence configuration.
type Store struct {
	Path string
}

// Defaults holds session-level default values loaded from the
// environment. cmd/simserver logs them at startup; sessions do not read
// them (session.Config.Normalize and the session's view-change timeout
// use their own built-in values).
type Defaults struct {
	NodeCount           int
	BranchCount         int
	MessageDeliveryRate int
	ViewChangeTimeout   time.Duration
}

// Config is the full process configuration.
type Config struct {
	Server   Server
	Store    Store
	Defaults Defaults
	LogFile  string
}

// Default returns the built-in fallback configuration.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Store:  Store{Path: "data/sim.pebble"},
		Defaults: Defaults{
			NodeCount:           7,
			BranchCount:         2,
			MessageDeliveryRate: 100,
			ViewChangeTimeout:   8 * time.Second,
		},
		LogFile: "data/simserver.log",
	}
}

// LoadFromEnv loads a .env file (if present) and overlays environment
// variables on top of Default(). Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("DEFAULT_NODE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Defaults.NodeCount = n
		}
	}
	if v := os.Getenv("DEFAULT_BRANCH_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Defaults.BranchCount = n
		}
	}
	if v := os.Getenv("DEFAULT_DELIVERY_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Defaults.MessageDeliveryRate = n
		}
	}
	if v := os.Getenv("VIEW_CHANGE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Defaults.ViewChangeTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}
