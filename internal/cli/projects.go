package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newProjectsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Group repositories into projects and update them together",
	}

	cmd.AddCommand(
		newProjectsListCmd(rt),
		newProjectsCreateCmd(rt),
		newProjectsShowCmd(rt),
		newProjectsDeleteCmd(rt),
		newProjectsAddCmd(rt),
		newProjectsRemoveCmd(rt),
		newProjectsBatchCmd(rt, "pull", "Pull every repository of a project", (*operations.Service).BatchPull),
		newProjectsBatchCmd(rt, "push", "Push every git repository of a project", (*operations.Service).BatchPush),
	)

	return cmd
}

func newProjectsListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				list, err := a.projects.ListProjects(ctx)
				if err != nil {
					return err
				}

				if rt.asJSON {
					return rt.printJSON(p, list)
				}
				if len(list) == 0 {
					p.Println(p.Dim("No projects"))
					return nil
				}
				for _, project := range list {
					p.Printf("%s  %s  %s\n", p.Dim(project.ID.String()), p.Title(project.Name), project.Description)
				}
				return nil
			})
		},
	}
}

func newProjectsCreateCmd(rt *runtime) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				project, err := a.projects.CreateProject(ctx, projects.ProjectDraft{
					Name:        args[0],
					Description: description,
				})
				if err != nil {
					return err
				}

				if rt.asJSON {
					return rt.printJSON(p, project)
				}
				p.Println(p.OK("Created project " + project.Name + " " + p.Dim(project.ID.String())))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")

	return cmd
}

func newProjectsShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project and its repositories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				project, err := findProject(ctx, a, args[0])
				if err != nil {
					return err
				}
				repos, err := a.projects.ListRepositories(ctx, project.ID)
				if err != nil {
					return err
				}

				if rt.asJSON {
					return rt.printJSON(p, struct {
						*projects.Project
						Repositories []projects.Repository
					}{project, repos})
				}

				p.Println(p.Title(project.Name) + " " + p.Dim(project.ID.String()))
				if project.Description != "" {
					p.Println(project.Description)
				}
				if len(repos) == 0 {
					p.Println(p.Dim("No repositories"))
					return nil
				}
				for _, r := range repos {
					p.Printf("  %-4s %-20s %s %s\n", r.Kind, r.Name, r.Path, p.Dim(r.ID.String()))
				}
				return nil
			})
		},
	}
}

func newProjectsDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and its repository entries; nothing is removed from disk",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				project, err := findProject(ctx, a, args[0])
				if err != nil {
					return err
				}
				if err := a.projects.DeleteProject(ctx, project.ID); err != nil {
					return err
				}
				return rt.printMessage(p, "Deleted project "+project.Name)
			})
		},
	}
}

func newProjectsAddCmd(rt *runtime) *cobra.Command {
	var (
		name string
		url  string
		vcs  string
	)

	cmd := &cobra.Command{
		Use:   "add <project> <path>",
		Short: "Register a repository in a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				project, err := findProject(ctx, a, args[0])
				if err != nil {
					return err
				}

				kind := projects.Kind(vcs)
				if kind == projects.KindNone && url == "" {
					if abs, absErr := filepath.Abs(args[1]); absErr == nil {
						kind = detectKind(abs)
					}
				}

				repo, err := a.projects.AddRepository(ctx, project.ID, projects.RepositoryDraft{
					Name: name,
					Path: args[1],
					URL:  url,
					Kind: kind,
				})
				if err != nil {
					return err
				}

				if rt.asJSON {
					return rt.printJSON(p, repo)
				}
				p.Println(p.OK(fmt.Sprintf("Added %s repository %s to %s", orNone(string(repo.Kind)), repo.Name, project.Name)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "repository name (last path element when omitted)")
	cmd.Flags().StringVar(&url, "url", "", "remote URL")
	cmd.Flags().StringVar(&vcs, "vcs", "", "version control system: git or svn")

	return cmd
}

func newProjectsRemoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <repository-id>",
		Short: "Unregister a repository; nothing is removed from disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				if err := a.projects.RemoveRepository(ctx, id); err != nil {
					return err
				}
				return rt.printMessage(p, "Repository removed")
			})
		},
	}
}

type batchFunc func(*operations.Service, context.Context, uuid.UUID) (*operations.BatchReport, error)

func newProjectsBatchCmd(rt *runtime, use, short string, fn batchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app, p *printer) error {
				project, err := findProject(ctx, a, args[0])
				if err != nil {
					return err
				}

				report, err := fn(a.operations, ctx, project.ID)
				if err != nil {
					return err
				}

				if rt.asJSON {
					return rt.printJSON(p, batchJSON(report))
				}

				for _, o := range report.Outcomes {
					if o.Success() {
						p.Printf("%s %-20s %s\n", p.OK("ok  "), o.Name, firstLine(o.Message))
						continue
					}
					p.Printf("%s %-20s %s %s\n", p.Failed("fail"), o.Name, firstLine(o.Err.Error()),
						p.Dim("("+string(failure.CategoryOf(o.Err))+")"))
				}
				p.Printf("%d succeeded, %d failed\n", report.Succeeded(), report.Failed())

				if report.Failed() > 0 {
					return fmt.Errorf("%s failed for %d of %d repositories", use, report.Failed(), len(report.Outcomes))
				}
				return nil
			})
		},
	}
}

type outcomeJSON struct {
	RepositoryID uuid.UUID `json:"repository_id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	VCS          string    `json:"vcs"`
	Message      string    `json:"message,omitempty"`
	Error        string    `json:"error,omitempty"`
	Category     string    `json:"category,omitempty"`
}

func batchJSON(report *operations.BatchReport) map[string]any {
	results := lo.Map(report.Outcomes, func(o operations.Outcome, _ int) outcomeJSON {
		res := outcomeJSON{
			RepositoryID: o.RepositoryID,
			Name:         o.Name,
			Path:         o.Path,
			VCS:          string(o.Kind),
			Message:      o.Message,
		}
		if o.Err != nil {
			res.Error = o.Err.Error()
			res.Category = string(failure.CategoryOf(o.Err))
		}
		return res
	})

	return map[string]any{
		"project_id": report.ProjectID,
		"succeeded":  report.Succeeded(),
		"failed":     report.Failed(),
		"results":    results,
	}
}

// findProject accepts a project id or an exact project name.
func findProject(ctx context.Context, a *app, ref string) (*projects.Project, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return a.projects.GetProject(ctx, id)
	}

	list, err := a.projects.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	project, ok := lo.Find(list, func(p projects.Project) bool {
		return p.Name == ref
	})
	if !ok {
		return nil, fmt.Errorf("%w: project %q", projects.ErrNotFound, ref)
	}

	return &project, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func orNone(s string) string {
	if s == "" {
		return "unversioned"
	}
	return s
}
