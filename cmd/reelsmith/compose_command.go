package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/compose"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/storyboard"
)

// newComposeCommand assembles a deliverable from already rendered clips and
// synthesized narration, driven by a storyboard file. Useful for re-running
// the final assembly without repeating the expensive stages.
func newComposeCommand(ctx *commandContext) *cobra.Command {
	var storyboardPath string
	var clipsDir string
	var audioDir string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Assemble a deliverable from rendered clips and narration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(storyboardPath)
			if err != nil {
				return fmt.Errorf("read storyboard: %w", err)
			}
			board, err := storyboard.Decode(data)
			if err != nil {
				return fmt.Errorf("decode storyboard: %w", err)
			}

			if strings.TrimSpace(clipsDir) == "" {
				clipsDir = cfg.Paths.RenderDir
			}
			if strings.TrimSpace(audioDir) == "" {
				return fmt.Errorf("--audio directory is required")
			}

			req := compose.Request{Title: board.Metadata.Title}
			for _, scene := range board.Scenes {
				clip := filepath.Join(clipsDir, scene.ClipFileName())
				duration, err := ffprobe.Duration(cmd.Context(), cfg.FFprobeBinary(), clip)
				if err != nil {
					return fmt.Errorf("scene %d (%s): %w", scene.Number, scene.Name, err)
				}
				req.VideoClips = append(req.VideoClips, clip)
				req.AudioClips = append(req.AudioClips, compose.AudioClip{
					Path:          filepath.Join(audioDir, scene.SpeechFileName()),
					TargetSeconds: duration,
					SceneNumber:   scene.Number,
					SceneName:     scene.Name,
				})
			}

			assembler := compose.New(compose.Config{
				SampleRate:    cfg.Audio.SampleRate,
				Channels:      cfg.Audio.Channels,
				Bitrate:       cfg.Video.Bitrate,
				OutputDir:     cfg.Paths.OutputDir,
				StagingDir:    cfg.Paths.StagingDir,
				FFmpegBinary:  cfg.FFmpegBinary(),
				FFprobeBinary: cfg.FFprobeBinary(),
			}, logger)

			deliverable, err := assembler.Compose(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deliverable: %s\n", deliverable)
			return nil
		},
	}

	cmd.Flags().StringVarP(&storyboardPath, "storyboard", "s", "", "Storyboard JSON file")
	cmd.Flags().StringVar(&clipsDir, "clips", "", "Directory holding rendered scene clips (defaults to render_dir)")
	cmd.Flags().StringVar(&audioDir, "audio", "", "Directory holding per-scene narration WAVs")
	_ = cmd.MarkFlagRequired("storyboard")
	return cmd
}
