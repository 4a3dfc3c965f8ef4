package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single probe invocation.
const DefaultTimeout = 30 * time.Second

var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
	Tags       Tags   `json:"tags"`
}

// Tags captures the stream tags consumed by track normalization.
type Tags struct {
	Language string `json:"language"`
	Title    string `json:"title"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// AudioTrack is one audio stream in discovery order. Index is the zero-based
// position among audio streams, independent of the container stream index.
type AudioTrack struct {
	Index      int
	Codec      string
	Channels   int
	SampleRate int
	Language   string
	Title      string
}

// Info is the normalized metadata record callers work with. A missing video
// stream leaves VideoCodec empty and a source without audio leaves
// AudioTracks empty; neither is an inspection error.
type Info struct {
	Duration    float64
	Width       int
	Height      int
	FrameRate   float64
	VideoCodec  string
	AudioTracks []AudioTrack
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response. The invocation is bounded by DefaultTimeout.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	runCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := commandContext(runCtx, binary, "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Probe is Inspect followed by Info normalization.
func Probe(ctx context.Context, binary string, path string) (Info, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return Info{}, err
	}
	return result.Info(), nil
}

// Info normalizes the raw probe result: container duration, first video
// stream geometry and codec, and audio tracks tagged in discovery order.
func (r Result) Info() Info {
	info := Info{
		Duration: parseFloat(r.Format.Duration),
	}

	audioIndex := 0
	for _, stream := range r.Streams {
		switch {
		case strings.EqualFold(stream.CodecType, "video"):
			if info.VideoCodec != "" {
				continue
			}
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = strings.ToLower(stream.CodecName)
			info.FrameRate = parseFrameRate(stream.RFrameRate)
		case strings.EqualFold(stream.CodecType, "audio"):
			track := AudioTrack{
				Index:      audioIndex,
				Codec:      strings.ToLower(stream.CodecName),
				Channels:   stream.Channels,
				SampleRate: parseInt(stream.SampleRate),
				Language:   strings.TrimSpace(stream.Tags.Language),
				Title:      strings.TrimSpace(stream.Tags.Title),
			}
			if track.Channels <= 0 {
				track.Channels = 2
			}
			if track.SampleRate <= 0 {
				track.SampleRate = 48000
			}
			if track.Language == "" {
				track.Language = "und"
			}
			if track.Title == "" {
				track.Title = fmt.Sprintf("Audio Track %d", audioIndex)
			}
			info.AudioTracks = append(info.AudioTracks, track)
			audioIndex++
		}
	}
	return info
}

// HasVideo reports whether a video stream was discovered.
func (i Info) HasVideo() bool {
	return i.VideoCodec != ""
}

// parseFrameRate converts ffprobe's rational "num/den" frame rate, guarding
// against a zero denominator.
func parseFrameRate(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return parseFloat(value)
	}
	numerator := parseFloat(num)
	denominator := parseFloat(den)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseInt(value string) int {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return parsed
}
