package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"playden/internal/config"
)

func newConfigCommand(configFlag *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(configFlag))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Config file: %s\n\n", path)
			} else {
				fmt.Fprintf(out, "Config file: %s (not found, using defaults)\n\n", path)
			}

			rows := [][]string{
				{"paths.video_dir", cfg.Paths.VideoDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.db_path", cfg.Paths.DBPath},
				{"paths.bind", cfg.Paths.Bind},
				{"upload.max_upload_bytes", fmt.Sprintf("%d", cfg.Upload.MaxUploadBytes)},
				{"audio.codec", cfg.Audio.Codec},
				{"audio.bitrate", cfg.Audio.Bitrate},
				{"audio.channels", fmt.Sprintf("%d", cfg.Audio.Channels)},
				{"audio.sample_rate", fmt.Sprintf("%d", cfg.Audio.SampleRate)},
				{"hls.segment_seconds", fmt.Sprintf("%d", cfg.HLS.SegmentSeconds)},
				{"workers.count", fmt.Sprintf("%d", cfg.Workers.Count)},
				{"tools.ffmpeg", cfg.Tools.FFmpeg},
				{"tools.ffprobe", cfg.Tools.FFprobe},
				{"tools.probe_timeout_seconds", fmt.Sprintf("%d", cfg.Tools.ProbeTimeoutSeconds)},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable([]string{"Key", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}
