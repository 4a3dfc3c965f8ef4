package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"playden/internal/config"
	"playden/internal/hls"
)

var commandContext = exec.CommandContext

// LineFunc receives raw tool output lines as they arrive. A nil or no-op
// callback is valid; progress reporting is advisory.
type LineFunc func(line string)

// Extractor defines the rendition extraction behaviour the pipeline needs.
type Extractor interface {
	ExtractVideo(ctx context.Context, inputPath, outputDir string, progress LineFunc) error
	ExtractAudioTrack(ctx context.Context, inputPath, outputDir string, trackIndex int, progress LineFunc) error
	Thumbnail(ctx context.Context, inputPath, outputPath, timestamp string) error
}

// AudioPolicy fixes the output parameters for every audio rendition.
type AudioPolicy struct {
	Codec      string
	Bitrate    string
	Channels   int
	SampleRate int
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithSegmentSeconds overrides the HLS segment duration.
func WithSegmentSeconds(seconds int) Option {
	return func(c *CLI) {
		if seconds > 0 {
			c.segmentSeconds = seconds
		}
	}
}

// WithAudioPolicy overrides the audio output policy.
func WithAudioPolicy(policy AudioPolicy) Option {
	return func(c *CLI) {
		c.audio = policy
	}
}

// CLI wraps the ffmpeg command-line transcoder.
type CLI struct {
	binary         string
	segmentSeconds int
	audio          AudioPolicy
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary:         "ffmpeg",
		segmentSeconds: 6,
		audio: AudioPolicy{
			Codec:      "aac",
			Bitrate:    "128k",
			Channels:   2,
			SampleRate: 48000,
		},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// FromConfig constructs a CLI client from the loaded configuration.
func FromConfig(cfg *config.Config) *CLI {
	return NewCLI(
		WithBinary(cfg.Tools.FFmpeg),
		WithSegmentSeconds(cfg.HLS.SegmentSeconds),
		WithAudioPolicy(AudioPolicy{
			Codec:      cfg.Audio.Codec,
			Bitrate:    cfg.Audio.Bitrate,
			Channels:   cfg.Audio.Channels,
			SampleRate: cfg.Audio.SampleRate,
		}),
	)
}

// ExtractVideo stream-copies the first video stream into a video-only HLS
// rendition inside outputDir.
func (c *CLI) ExtractVideo(ctx context.Context, inputPath, outputDir string, progress LineFunc) error {
	if err := requirePaths(inputPath, outputDir); err != nil {
		return err
	}

	args := []string{
		"-i", inputPath,
		"-map", "0:v:0",
		"-c:v", "copy",
		"-an",
		"-f", "hls",
		"-hls_time", strconv.Itoa(c.segmentSeconds),
		"-hls_list_size", "0",
		"-hls_segment_filename", filepath.Join(outputDir, hls.VideoSegmentPattern),
		filepath.Join(outputDir, hls.VideoPlaylistName),
	}
	if err := c.run(ctx, args, progress); err != nil {
		return fmt.Errorf("extract video: %w", err)
	}
	return nil
}

// ExtractAudioTrack transcodes one source audio stream, addressed by its
// zero-based audio index, into an HLS audio rendition under the fixed policy.
func (c *CLI) ExtractAudioTrack(ctx context.Context, inputPath, outputDir string, trackIndex int, progress LineFunc) error {
	if err := requirePaths(inputPath, outputDir); err != nil {
		return err
	}
	if trackIndex < 0 {
		return fmt.Errorf("invalid track index %d", trackIndex)
	}

	args := []string{
		"-i", inputPath,
		"-map", fmt.Sprintf("0:a:%d", trackIndex),
		"-c:a", c.audio.Codec,
		"-b:a", c.audio.Bitrate,
		"-ac", strconv.Itoa(c.audio.Channels),
		"-ar", strconv.Itoa(c.audio.SampleRate),
		"-profile:a", "aac_low",
		"-f", "hls",
		"-hls_time", strconv.Itoa(c.segmentSeconds),
		"-hls_list_size", "0",
		"-hls_segment_filename", filepath.Join(outputDir, hls.AudioSegmentPattern(trackIndex)),
		filepath.Join(outputDir, hls.AudioPlaylistName(trackIndex)),
	}
	if err := c.run(ctx, args, progress); err != nil {
		return fmt.Errorf("extract audio track %d: %w", trackIndex, err)
	}
	return nil
}

// Thumbnail grabs a single frame at the given H:MM:SS timestamp as a JPEG.
func (c *CLI) Thumbnail(ctx context.Context, inputPath, outputPath, timestamp string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-ss", timestamp,
		"-i", inputPath,
		"-vframes", "1",
		"-q:v", "2",
		outputPath,
	}
	if err := c.run(ctx, args, nil); err != nil {
		return fmt.Errorf("thumbnail: %w", err)
	}
	return nil
}

// run launches ffmpeg and streams its stderr lines to the progress callback.
// ffmpeg writes all status output to stderr.
func (c *CLI) run(ctx context.Context, args []string, progress LineFunc) error {
	cmd := commandContext(ctx, c.binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lastLine string
	for scanner.Scan() {
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lastLine = trimmed
		}
		if progress != nil {
			progress(line)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("read %s output: %w", c.binary, err)
	}

	if err := cmd.Wait(); err != nil {
		if lastLine != "" {
			return fmt.Errorf("%s: %w: %s", c.binary, err, lastLine)
		}
		return fmt.Errorf("%s: %w", c.binary, err)
	}
	return nil
}

func requirePaths(inputPath, outputDir string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return errors.New("output directory required")
	}
	return nil
}

var _ Extractor = (*CLI)(nil)
