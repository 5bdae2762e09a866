package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/wiregrid/internal/ctyconv"
	"github.com/spf13/cobra"
	"github.com/zclconf/go-cty/cty"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Execute runs the command line in args. Every returned error is an
// *ExitError: 2 for usage errors, 1 for everything else.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// NewRootCommand assembles the wiregrid command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wiregrid",
		Short:         "wiregrid runs dataflow graphs of wired modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// ParseParams turns "name=value" pairs into run parameters. Values are HCL
// literals; anything else is taken as a plain string.
func ParseParams(pairs []string) (map[string]cty.Value, error) {
	params := make(map[string]cty.Value, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid param %q: expected name=value", pair)
		}
		params[name] = ctyconv.ParseLiteral(strings.TrimSpace(raw))
	}
	return params, nil
}

// argsRange accepts between lo and hi positional arguments; hi < 0 means no
// upper bound.
func argsRange(lo, hi int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < lo || (hi >= 0 && len(args) > hi) {
			if hi == lo {
				return usageError("expected %d argument(s), got %d", lo, len(args))
			}
			return usageError("expected at least %d argument(s), got %d", lo, len(args))
		}
		return nil
	}
}
