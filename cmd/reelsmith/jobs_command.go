package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect generation job history",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsSummaryCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var filter []jobs.Status
			if trimmed := strings.TrimSpace(statusFlag); trimmed != "" {
				status, ok := jobs.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				filter = append(filter, status)
			}

			list, err := store.List(cmd.Context(), filter...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs found")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, job := range list {
				title := job.Title
				if title == "" {
					title = job.Concept
				}
				rows = append(rows, []string{
					shortID(job.JobID),
					title,
					job.Format,
					string(job.Status),
					job.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{Header: "JOB"},
					{Header: "TITLE"},
					{Header: "FORMAT"},
					{Header: "STATUS"},
					{Header: "UPDATED", RightAlign: true},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := findJob(cmd, store, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job:         %s\n", job.JobID)
			fmt.Fprintf(out, "Concept:     %s\n", job.Concept)
			fmt.Fprintf(out, "Format:      %s\n", job.Format)
			if job.Title != "" {
				fmt.Fprintf(out, "Title:       %s\n", job.Title)
			}
			fmt.Fprintf(out, "Status:      %s\n", job.Status)
			if job.ProgressStage != "" {
				fmt.Fprintf(out, "Progress:    %s (%.0f%%) %s\n", job.ProgressStage, job.ProgressPercent, job.ProgressMessage)
			}
			if job.DeliverablePath != "" {
				fmt.Fprintf(out, "Deliverable: %s\n", job.DeliverablePath)
			}
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:       %s\n", job.ErrorMessage)
			}
			fmt.Fprintf(out, "Created:     %s\n", job.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Updated:     %s\n", job.UpdatedAt.Local().Format(time.DateTime))
			return nil
		},
	}
}

func newJobsSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Summary(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{Header: "TOTAL", RightAlign: true},
					{Header: "PENDING", RightAlign: true},
					{Header: "PROCESSING", RightAlign: true},
					{Header: "COMPLETED", RightAlign: true},
					{Header: "FAILED", RightAlign: true},
				},
				[][]string{{
					fmt.Sprintf("%d", summary.Total),
					fmt.Sprintf("%d", summary.Pending),
					fmt.Sprintf("%d", summary.Processing),
					fmt.Sprintf("%d", summary.Completed),
					fmt.Sprintf("%d", summary.Failed),
				}},
			))
			return nil
		},
	}
}

// findJob resolves an argument that may be a full job id or a unique prefix.
func findJob(cmd *cobra.Command, store *jobs.Store, arg string) (*jobs.Job, error) {
	arg = strings.TrimSpace(arg)
	job, err := store.GetByJobID(cmd.Context(), arg)
	if err != nil {
		return nil, err
	}
	if job != nil {
		return job, nil
	}

	list, err := store.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	var matches []*jobs.Job
	for _, candidate := range list {
		if strings.HasPrefix(candidate.JobID, arg) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("no job matches %q", arg)
	default:
		return nil, fmt.Errorf("%d jobs match %q; use a longer prefix", len(matches), arg)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
