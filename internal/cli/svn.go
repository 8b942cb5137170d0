package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newSvnCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "svn",
		Short: "Working copy commands without a git counterpart",
	}

	cmd.AddCommand(newSvnAddCmd(rt), newSvnRevertCmd(rt))

	return cmd
}

func newSvnAddCmd(rt *runtime) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Schedule files for addition",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				out, err := a.svn.Add(ctx, root, args)
				if err != nil {
					return err
				}
				return rt.printMessage(p, out)
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "working copy the files are relative to")

	return cmd
}

func newSvnRevertCmd(rt *runtime) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "revert [file]...",
		Short: "Discard local changes; everything when no file is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			var files []string
			if len(args) > 0 {
				files = args
			}

			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				out, err := a.svn.Revert(ctx, root, files)
				if err != nil {
					return err
				}
				return rt.printMessage(p, out)
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "working copy the files are relative to")

	return cmd
}
