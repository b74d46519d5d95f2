package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/pkg/dashboard"
)

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				password = strings.TrimSpace(line)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			token, err := opts.client().Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := opts.saveToken(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	return cmd
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and generation quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			client := opts.client()
			user, err := client.CurrentUser(ctx)
			if err != nil {
				return err
			}
			usage, err := client.Usage(ctx)
			if err != nil {
				return err
			}
			user.GenerationsUsed = usage.Used

			shell := dashboard.NewShell(user, client)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s <%s>\n", user.FirstName, user.LastName, user.Email)
			fmt.Fprintf(out, "Plan: %s\n", usage.Plan)
			if text := shell.UsageText(); text != "" {
				fmt.Fprintln(out, text)
			}
			fmt.Fprintln(out, shell.RemainingText())
			if shell.ShowAdmin() {
				fmt.Fprintln(out, "Role: admin")
			}
			return nil
		},
	}
}

// terminal prints generation results and notifications.
type terminal struct {
	out        io.Writer
	previewOut string
}

func (t *terminal) RenderPreview(html string) {
	if t.previewOut == "" {
		return
	}
	if err := os.WriteFile(t.previewOut, []byte(html), 0644); err != nil {
		fmt.Fprintf(t.out, "Failed to write preview: %v\n", err)
		return
	}
	fmt.Fprintf(t.out, "Preview written to %s\n", t.previewOut)
}

func (t *terminal) ShowCode(code string) {
	fmt.Fprintln(t.out, code)
}

func (t *terminal) Notify(n dashboard.Notification) {
	fmt.Fprintf(t.out, "%s: %s\n", n.Title, n.Description)
}

func newGenerateCmd(opts *options) *cobra.Command {
	var req models.GenerateRequest
	var previewOut string

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate code for a project description",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Prompt = args[0]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			term := &terminal{out: cmd.OutOrStdout(), previewOut: previewOut}
			flow := dashboard.NewGenerationFlow(opts.client(), term, dashboard.WithNotifier(term))
			_, err := flow.Submit(ctx, req)
			return err
		},
	}
	cmd.Flags().StringVar(&req.ProjectName, "name", "", "Project name")
	cmd.Flags().StringVar(&req.Framework, "framework", "react", "Target framework")
	cmd.Flags().StringVar(&req.Template, "template", "", "Starter template id")
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "What to build")
	cmd.Flags().StringVarP(&previewOut, "preview-out", "o", "", "Write the preview HTML to this file")
	return cmd
}

func newProjectsCmd(opts *options) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "List and create projects",
	}

	var deployedOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			shell := dashboard.NewShell(models.User{}, opts.client())
			tab := dashboard.TabProjects
			if deployedOnly {
				tab = dashboard.TabDeployment
			}
			if err := shell.SelectTab(ctx, tab); err != nil {
				return err
			}

			list := shell.Projects()
			if deployedOnly {
				list = shell.Deployments()
			}
			printProjects(cmd.OutOrStdout(), list)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&deployedOnly, "deployed", false, "Only show deployed projects")

	var create models.CreateProjectRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			project, err := opts.client().CreateProject(ctx, create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&create.Name, "name", "", "Project name")
	createCmd.Flags().StringVar(&create.Description, "description", "", "Project description")
	createCmd.Flags().StringVar(&create.Framework, "framework", "react", "Target framework")

	projectsCmd.AddCommand(listCmd, createCmd)
	return projectsCmd
}

func printProjects(out io.Writer, list []models.Project) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No projects yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFRAMEWORK\tSTATUS\tURL")
	for _, p := range list {
		url := ""
		if p.DeploymentURL != nil {
			url = *p.DeploymentURL
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Framework, p.Status, url)
	}
	tw.Flush()
}

func newDeployCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy <project-id> <preview.html>",
		Short: "Publish a preview HTML file as the project's site",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read preview: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			project, err := opts.client().Deploy(ctx, args[0], string(html))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deployment of %s queued (status: %s)\n", project.ID, project.Status)
			return nil
		},
	}
}

func newTemplatesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List starter templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			templates, err := opts.client().Templates(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range templates {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, strings.Join(t.Tags, ", "), t.Status)
			}
			return tw.Flush()
		},
	}
}
