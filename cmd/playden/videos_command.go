package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newVideosCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "videos",
		Short: "List videos known to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(*configFlag)
			if err != nil {
				return err
			}

			var payload videosPayload
			if err := client.getJSON(cmd.Context(), "/api/videos", &payload); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(payload.Videos) == 0 {
				fmt.Fprintln(out, "No videos uploaded yet.")
				return nil
			}

			rows := make([][]string, 0, len(payload.Videos))
			for _, video := range payload.Videos {
				state := video.Status
				switch video.Status {
				case "processing":
					state = fmt.Sprintf("processing %d%%", video.Progress)
				case "failed":
					if video.ErrorMessage != "" {
						state = "failed: " + video.ErrorMessage
					}
				}
				rows = append(rows, []string{
					shortID(video.ID),
					video.OriginalFilename,
					state,
					formatDuration(video.Duration),
					fmt.Sprintf("%dx%d", video.Width, video.Height),
					strconv.Itoa(video.AudioTrackCount),
					formatBytes(video.FileSize),
					strconv.Itoa(video.WatchCount),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"ID", "File", "State", "Length", "Resolution", "Audio", "Size", "Watches"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	if total <= 0 {
		return "-"
	}
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
