// Package ffmpeg wraps the external ffmpeg binary for the three rendition
// operations the pipeline performs: video-only HLS stream copy, per-track AAC
// HLS transcode, and single-frame thumbnail extraction.
//
// Each invocation streams raw stderr lines to a caller-supplied callback;
// Window turns those lines into monotonic percentages within a caller-chosen
// range. Success is determined solely by the process exit code.
package ffmpeg
