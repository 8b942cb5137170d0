package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd(rt *runtime) *cobra.Command {
	var (
		limit int
		path  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				var (
					entries []history.Entry
					err     error
				)
				if path != "" {
					abs, absErr := filepath.Abs(path)
					if absErr != nil {
						return absErr
					}
					entries, err = a.history.ByRepository(ctx, abs)
					if limit > 0 && len(entries) > limit {
						entries = entries[:limit]
					}
				} else {
					entries, err = a.history.Recent(ctx, limit)
				}
				if err != nil {
					return err
				}

				if rt.asJSON {
					return rt.printJSON(p, entries)
				}

				if len(entries) == 0 {
					p.Println(p.Dim("No operations recorded"))
					return nil
				}
				for _, e := range entries {
					printEntry(p, e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultRecentLimit, "maximum number of entries")
	cmd.Flags().StringVar(&path, "path", "", "only operations on this repository")

	cmd.AddCommand(newHistoryClearCmd(rt), newHistoryRemoveCmd(rt))

	return cmd
}

func printEntry(p *printer, e history.Entry) {
	status := p.OK("ok  ")
	switch e.Status {
	case history.StatusError:
		status = p.Failed("fail")
	case history.StatusPending:
		status = p.Warn("... ")
	}

	p.Printf("%s %s %-12s %-20s %s %s\n",
		p.Dim(e.Timestamp.Local().Format(time.DateTime)),
		status,
		e.Type,
		e.RepositoryName,
		e.Message,
		p.Dim(e.Duration.Round(time.Millisecond).String()))
}

func newHistoryClearCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				if err := a.history.Clear(ctx); err != nil {
					return err
				}
				return rt.printMessage(p, "History cleared")
			})
		},
	}
}

func newHistoryRemoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete one recorded operation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				if err := a.history.Remove(ctx, id); err != nil {
					return err
				}
				return rt.printMessage(p, "Entry removed")
			})
		},
	}
}
