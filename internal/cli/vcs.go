package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/spf13/cobra"
)

func newStatusCmd(rt *runtime) *cobra.Command {
	var flags targetFlags

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show branch or revision and changed files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := flags.target(args)
			if err != nil {
				return err
			}

			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				status, err := a.operations.Status(ctx, target)
				if err != nil {
					return err
				}

				if rt.asJSON {
					if status.Git != nil {
						return rt.printJSON(p, status.Git)
					}
					return rt.printJSON(p, status.Svn)
				}

				printStatus(p, status)
				return nil
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func printStatus(p *printer, status *operations.Status) {
	var modified, untracked []string
	var dirty bool

	switch {
	case status.Git != nil:
		st := status.Git
		line := "On branch " + p.Title(deref(st.Branch, "(detached)"))
		if st.HeadRevision != nil {
			line += " " + p.Dim(shortHash(*st.HeadRevision))
		}
		p.Println(line)
		modified, untracked, dirty = st.Modified, st.Untracked, st.IsDirty
	case status.Svn != nil:
		st := status.Svn
		p.Println("Revision " + p.Title(deref(st.Revision, "unknown")) + " " + p.Dim(deref(st.URL, "")))
		if st.Author != nil {
			p.Println(p.Dim("Last changed by " + *st.Author + " " + deref(st.Date, "")))
		}
		modified, untracked, dirty = st.Modified, st.Untracked, st.IsDirty
	}

	if !dirty {
		p.Println(p.OK("Nothing to commit, working copy clean"))
		return
	}

	if len(modified) > 0 {
		p.Println("Modified:")
		for _, f := range modified {
			p.Println("  " + p.Warn("M "+f))
		}
	}
	if len(untracked) > 0 {
		p.Println("Untracked:")
		for _, f := range untracked {
			p.Println("  " + p.Dim("? "+f))
		}
	}
}

func newPullCmd(rt *runtime) *cobra.Command {
	var flags targetFlags

	cmd := &cobra.Command{
		Use:     "pull [path]",
		Aliases: []string{"update"},
		Short:   "Pull from the tracking branch (git) or update the working copy (svn)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTarget(cmd, args, &flags, func(ctx context.Context, a *app, target operations.Target) (string, error) {
				return a.operations.Pull(ctx, target)
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func newPushCmd(rt *runtime) *cobra.Command {
	var flags targetFlags

	cmd := &cobra.Command{
		Use:   "push [path]",
		Short: "Push the current branch of a git repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTarget(cmd, args, &flags, func(ctx context.Context, a *app, target operations.Target) (string, error) {
				return a.operations.Push(ctx, target)
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func newCommitCmd(rt *runtime) *cobra.Command {
	var (
		flags   targetFlags
		message string
	)

	cmd := &cobra.Command{
		Use:   "commit [path]",
		Short: "Commit all local changes",
		Long: `Commit all local changes.

For git every modified and untracked file is staged first. For svn the
working copy is committed as is; schedule new files with "vcsctl svn add".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTarget(cmd, args, &flags, func(ctx context.Context, a *app, target operations.Target) (string, error) {
				return a.operations.Commit(ctx, target, message)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func newDiffCmd(rt *runtime) *cobra.Command {
	var flags targetFlags

	cmd := &cobra.Command{
		Use:   "diff [path]",
		Short: "Show local changes as a unified diff",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := flags.target(args)
			if err != nil {
				return err
			}

			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				out, err := a.operations.Diff(ctx, target)
				if err != nil {
					return err
				}

				if rt.asJSON {
					return rt.printJSON(p, map[string]string{"diff": out})
				}

				p.Println(strings.TrimRight(p.Diff(out), "\n"))
				return nil
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func newCloneCmd(rt *runtime) *cobra.Command {
	var vcs string

	cmd := &cobra.Command{
		Use:     "clone <url> <target>",
		Aliases: []string{"checkout"},
		Short:   "Clone a git repository or check out an svn working copy",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := projects.Kind(vcs)
			if !kind.Valid() {
				return errors.New("unsupported vcs: choose git or svn")
			}

			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				out, err := a.operations.Clone(ctx, kind, args[0], args[1])
				if err != nil {
					return err
				}
				return rt.printMessage(p, out)
			})
		},
	}
	cmd.Flags().StringVar(&vcs, "vcs", "", "version control system: git or svn (detected from the URL when omitted)")

	return cmd
}

func newAuthTestCmd(rt *runtime) *cobra.Command {
	var flags targetFlags

	cmd := &cobra.Command{
		Use:   "auth-test [path]",
		Short: "Check that the remote repository accepts the configured credentials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTarget(cmd, args, &flags, func(ctx context.Context, a *app, target operations.Target) (string, error) {
				return a.operations.TestAuth(ctx, target)
			})
		},
	}
	flags.register(cmd)

	return cmd
}

// runTarget runs an operation that returns a message for a single working
// copy.
func (rt *runtime) runTarget(
	cmd *cobra.Command,
	args []string,
	flags *targetFlags,
	fn func(ctx context.Context, a *app, target operations.Target) (string, error),
) error {
	target, err := flags.target(args)
	if err != nil {
		return err
	}

	return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
		out, err := fn(ctx, a, target)
		if err != nil {
			return err
		}
		return rt.printMessage(p, out)
	})
}

func (rt *runtime) printMessage(p *printer, message string) error {
	if rt.asJSON {
		return rt.printJSON(p, map[string]string{"message": message})
	}

	p.Println(p.OK(strings.TrimSpace(message)))
	return nil
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
