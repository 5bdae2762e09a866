package cli

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/library"
	"github.com/specialistvlad/wiregrid/internal/loader"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate PATH...",
		Short: "Check graph files and the sub-graphs they compose",
		Args:  argsRange(1, -1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			ctx := ctxlog.WithLogger(cmd.Context(), logger)

			graphs, err := loader.LoadPaths(ctx, args...)
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			if len(graphs) == 0 {
				return &ExitError{Code: 1, Message: "no graph files found"}
			}
			lib, err := library.New(graphs...)
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}

			out := cmd.OutOrStdout()
			unresolved := 0
			for _, g := range graphs {
				fmt.Fprintf(out, "ok  %s (%d modules, %d wires)\n", g.Name, len(g.Modules), len(g.Wires))
				for i, m := range g.Modules {
					if m.Kind() != model.KindComposed {
						continue
					}
					if _, ok := lib.Get(m.Subgraph()); !ok {
						fmt.Fprintf(cmd.ErrOrStderr(), "graph %q module %d: sub-graph %q is not defined\n", g.Name, i, m.Subgraph())
						unresolved++
					}
				}
			}
			if unresolved > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d composed module(s) reference undefined graphs", unresolved)}
			}
			return nil
		},
	}
}
