package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"demoforge/internal/api"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage demo sessions",
	}

	sessionCmd.AddCommand(newSessionCreateCommand(ctx))
	sessionCmd.AddCommand(newSessionListCommand(ctx))
	sessionCmd.AddCommand(newSessionStatusCommand(ctx))
	sessionCmd.AddCommand(newSessionRetryCommand(ctx))
	sessionCmd.AddCommand(newSessionDeleteCommand(ctx))

	return sessionCmd
}

func newSessionCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "create <github-url>",
		Aliases: []string{"new"},
		Short:   "Start a new demo session for a repository",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.SessionResponse
			req := api.CreateSessionRequest{RepoURL: strings.TrimSpace(args[0])}
			if err := ctx.postJSON("/api/sessions", req, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s created for %s\n", resp.ID, resp.RepositoryURL)
			if len(resp.Suggestions) > 0 {
				fmt.Fprintf(out, "%d suggested videos:\n", len(resp.Suggestions))
				for _, suggestion := range resp.Suggestions {
					fmt.Fprintf(out, "  %d. %s (%ds)\n",
						suggestion.Sequence, suggestion.Title, suggestion.DurationSeconds)
				}
			}
			return nil
		},
	}
}

func newSessionListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List demo sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/sessions"
			if filter := strings.TrimSpace(statusFilter); filter != "" {
				path += "?status=" + filter
			}
			var resp api.SessionListResponse
			if err := ctx.getJSON(path, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, resp)
			}
			if len(resp.Sessions) == 0 {
				fmt.Fprintln(out, "No sessions found")
				return nil
			}

			rows := make([][]string, 0, len(resp.Sessions))
			for _, sess := range resp.Sessions {
				rows = append(rows, []string{
					sess.ID,
					displayName(sess),
					sess.Status,
					fmt.Sprintf("%.0f%%", sess.Progress.Percentage),
					sess.CreatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Project", "Status", "Progress", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (comma separated)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newSessionStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status <session-id>",
		Aliases: []string{"show"},
		Short:   "Show the full state of one session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.SessionResponse
			if err := ctx.getJSON("/api/sessions/"+strings.TrimSpace(args[0])+"/status", &resp); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printSessionDetail(cmd, resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted output")
	return cmd
}

func newSessionRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <session-id>",
		Short: "Retry a failed pipeline stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.SessionResponse
			if err := ctx.postJSON("/api/sessions/"+strings.TrimSpace(args[0])+"/retry", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s resumed at %s\n", resp.ID, resp.Status)
			return nil
		},
	}
}

func newSessionDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <session-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a session and all of its stored media",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodDelete,
				ctx.apiBaseURL()+"/api/sessions/"+id, nil)
			if err != nil {
				return err
			}
			resp, err := ctx.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("connect to demoforge server: %w (start it with `demoforge serve`)", err)
			}
			defer resp.Body.Close()
			if err := decodeAPIResponse(resp, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s deleted\n", id)
			return nil
		},
	}
}

func displayName(sess api.SessionResponse) string {
	if sess.ProjectName != "" {
		return sess.ProjectName
	}
	return sess.RepositoryURL
}

func printSessionDetail(cmd *cobra.Command, sess api.SessionResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:    %s\n", sess.ID)
	fmt.Fprintf(out, "Repository: %s\n", sess.RepositoryURL)
	if sess.ProjectName != "" {
		fmt.Fprintf(out, "Project:    %s\n", sess.ProjectName)
	}
	fmt.Fprintf(out, "Status:     %s\n", sess.Status)
	fmt.Fprintf(out, "Progress:   %.0f%% (%s)\n", sess.Progress.Percentage, sess.Progress.Message)
	if sess.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:      %s\n", sess.ErrorMessage)
	}
	if sess.DemoURL != "" {
		fmt.Fprintf(out, "Demo:       %s\n", sess.DemoURL)
	}

	if len(sess.Uploads) > 0 {
		rows := make([][]string, 0, len(sess.Uploads))
		for _, upload := range sess.Uploads {
			detail := ""
			if len(upload.Errors) > 0 {
				detail = strings.Join(upload.Errors, "; ")
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", upload.Sequence),
				upload.State,
				detail,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Seq", "State", "Detail"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft},
		))
	}

	if len(sess.Artifacts) > 0 {
		rows := make([][]string, 0, len(sess.Artifacts))
		for _, artifact := range sess.Artifacts {
			rows = append(rows, []string{
				artifact.Resolution,
				fmt.Sprintf("%dx%d", artifact.Width, artifact.Height),
				artifact.ObjectKey,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Resolution", "Size", "Object"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}
}
