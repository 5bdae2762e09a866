package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/specialistvlad/wiregrid/internal/trigger"
	"github.com/zclconf/go-cty/cty"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath    string // file holding the root graph
	GraphName    string // root graph inside GraphPath; the first one when empty
	LibraryPaths []string
	Params       map[string]cty.Value

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	TracePath       string
	TraceValues     bool
	Limits          engine.Limits

	SocketIO trigger.SocketIOConfig
	Bindings []trigger.Binding
	// Listen keeps the app running after the initial cascade until the
	// context is cancelled.
	Listen bool
}

func NewConfig(cfg Config) (*Config, error) {
	if strings.TrimSpace(cfg.GraphPath) == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.Limits.MaxDepth < 0 || cfg.Limits.MaxSteps < 0 {
		return nil, errors.New("cascade limits must not be negative")
	}
	if len(cfg.Bindings) > 0 && cfg.SocketIO.URL == "" {
		return nil, errors.New("event bindings require a socket.io URL")
	}
	if cfg.Params == nil {
		cfg.Params = map[string]cty.Value{}
	}

	return &cfg, nil
}
