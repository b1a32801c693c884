package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/jobs"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/services/llm"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var format string
	var audience string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "generate <concept>",
		Short: "Generate a narrated video for a concept",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !llm.IsValidFormat(format) {
				return fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(llm.FormatNames(), ", "))
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := pipeline.New(cfg, logger, store)
			if err != nil {
				return err
			}

			job, err := p.Run(cmd.Context(), pipeline.Request{
				Concept:       strings.Join(args, " "),
				Format:        format,
				AudienceLevel: audience,
				ShowProgress:  !noProgress,
			})
			if err != nil {
				if job != nil {
					return fmt.Errorf("job %s failed: %w", job.JobID, err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s completed\n", job.JobID)
			fmt.Fprintf(out, "Deliverable: %s\n", job.DeliverablePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "short", "Video format (short, medium, long)")
	cmd.Flags().StringVar(&audience, "audience", "general", "Audience level for the narration")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bars")
	return cmd
}
