// Package config resolves runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
)

// Config holds everything main needs to wire a workspace.
type Config struct {
	Backend     Backend
	DBPath      string // sqlite backend
	FilePath    string // file backend
	Owner       string
	LogUseCases bool
}

// DefaultConfig puts data under ~/.juno and scopes it to the OS user.
func DefaultConfig() Config {
	dir := ".juno"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".juno")
	}
	return Config{
		Backend:  BackendSQLite,
		DBPath:   filepath.Join(dir, "juno.db"),
		FilePath: filepath.Join(dir, "juno.json"),
		Owner:    defaultOwner(),
	}
}

// LoadConfig reads JUNO_* variables from the process environment.
func LoadConfig() Config {
	return LoadFrom(os.Getenv)
}

// LoadFrom is LoadConfig with an injectable lookup; unset or invalid
// values keep their defaults.
func LoadFrom(getenv func(string) string) Config {
	cfg := DefaultConfig()

	if v := getenv("JUNO_BACKEND"); v != "" {
		cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := getenv("JUNO_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("JUNO_FILE"); v != "" {
		cfg.FilePath = v
	}
	if v := getenv("JUNO_OWNER"); strings.TrimSpace(v) != "" {
		cfg.Owner = strings.TrimSpace(v)
	}
	if v := getenv("JUNO_LOG_USECASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("sqlite backend needs a database path")
		}
	case BackendFile:
		if c.FilePath == "" {
			return fmt.Errorf("file backend needs a file path")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendFile)
	}
	if strings.TrimSpace(c.Owner) == "" {
		return fmt.Errorf("owner is required")
	}
	return nil
}

// StoragePath is the path the selected backend reads and writes.
func (c Config) StoragePath() string {
	if c.Backend == BackendFile {
		return c.FilePath
	}
	return c.DBPath
}

func defaultOwner() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "default"
}
