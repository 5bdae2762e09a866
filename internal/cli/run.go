package cli

import (
	"github.com/specialistvlad/wiregrid/internal/app"
	"github.com/specialistvlad/wiregrid/internal/trigger"
	"github.com/spf13/cobra"
)

type runOptions struct {
	params          []string
	libraries       []string
	graphName       string
	logFormat       string
	logLevel        string
	tracePath       string
	traceValues     bool
	maxDepth        int
	maxSteps        int
	healthcheckPort int
	socketIOURL     string
	socketIONS      string
	socketIOInsec   bool
	bindings        []string
	listen          bool
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run GRAPH_FILE",
		Short: "Run a graph and print its outputs",
		Args:  argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(args[0])
			if err != nil {
				return err
			}
			a, err := app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			if err := a.Run(cmd.Context()); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.params, "param", "p", nil, "Run parameter as name=value; values are HCL literals (repeatable)")
	f.StringArrayVarP(&opts.libraries, "library", "l", nil, "File or directory with graphs available for composition (repeatable)")
	f.StringVarP(&opts.graphName, "graph", "g", "", "Graph to run when the file defines several (default: the first)")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	f.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.StringVar(&opts.tracePath, "trace", "", "Write a JSON-lines execution trace to this file")
	f.BoolVar(&opts.traceValues, "trace-values", false, "Include produced values in the trace")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "Maximum cascade nesting depth (0 uses the default)")
	f.IntVar(&opts.maxSteps, "max-steps", 0, "Maximum module executions per cascade (0 uses the default)")
	f.IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	f.StringVar(&opts.socketIOURL, "socketio-url", "", "socket.io server delivering callback trigger events")
	f.StringVar(&opts.socketIONS, "socketio-namespace", "", "socket.io namespace")
	f.BoolVar(&opts.socketIOInsec, "socketio-insecure", false, "Skip TLS certificate verification for socket.io")
	f.StringArrayVar(&opts.bindings, "bind", nil, "Route a socket.io event to a callback as event=index|name (repeatable)")
	f.BoolVar(&opts.listen, "listen", false, "Keep running after the initial cascade until interrupted")

	return cmd
}

func (o runOptions) config(graphPath string) (*app.Config, error) {
	params, err := ParseParams(o.params)
	if err != nil {
		return nil, usageError("%v", err)
	}

	bindings := make([]trigger.Binding, 0, len(o.bindings))
	for _, raw := range o.bindings {
		b, err := trigger.ParseBinding(raw)
		if err != nil {
			return nil, usageError("%v", err)
		}
		bindings = append(bindings, b)
	}

	cfg, err := app.NewConfig(app.Config{
		GraphPath:       graphPath,
		GraphName:       o.graphName,
		LibraryPaths:    o.libraries,
		Params:          params,
		LogFormat:       o.logFormat,
		LogLevel:        o.logLevel,
		HealthcheckPort: o.healthcheckPort,
		TracePath:       o.tracePath,
		TraceValues:     o.traceValues,
		SocketIO: trigger.SocketIOConfig{
			URL:                o.socketIOURL,
			Namespace:          o.socketIONS,
			InsecureSkipVerify: o.socketIOInsec,
		},
		Bindings: bindings,
		Listen:   o.listen,
	})
	if err != nil {
		return nil, usageError("%v", err)
	}
	cfg.Limits.MaxDepth = o.maxDepth
	cfg.Limits.MaxSteps = o.maxSteps
	if cfg.Limits.MaxDepth < 0 || cfg.Limits.MaxSteps < 0 {
		return nil, usageError("cascade limits must not be negative")
	}
	return cfg, nil
}
