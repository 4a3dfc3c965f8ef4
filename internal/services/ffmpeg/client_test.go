package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"slices"
	"strings"
	"testing"
)

func stubCommand(t *testing.T, captured *[][]string, env ...string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append(*captured, append([]string(nil), args...))
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(append(os.Environ(), "GO_WANT_HELPER_PROCESS=1"), env...)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestNewCLIOptions(t *testing.T) {
	cli := NewCLI(
		WithBinary("/opt/ffmpeg"),
		WithSegmentSeconds(4),
		WithAudioPolicy(AudioPolicy{Codec: "aac", Bitrate: "96k", Channels: 1, SampleRate: 44100}),
	)
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override, got %q", cli.binary)
	}
	if cli.segmentSeconds != 4 {
		t.Fatalf("expected segment override, got %d", cli.segmentSeconds)
	}
	if cli.audio.Bitrate != "96k" {
		t.Fatalf("expected audio policy override, got %+v", cli.audio)
	}
}

func TestExtractVideoRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if err := cli.ExtractVideo(context.Background(), "", "/tmp", nil); err == nil {
		t.Fatal("expected error for empty input path")
	}
	if err := cli.ExtractVideo(context.Background(), "/media/in.mp4", "", nil); err == nil {
		t.Fatal("expected error for empty output dir")
	}
}

func TestExtractVideoBuildsStreamCopyCommand(t *testing.T) {
	var captured [][]string
	stubCommand(t, &captured)

	cli := NewCLI(WithSegmentSeconds(6))
	if err := cli.ExtractVideo(context.Background(), "/media/in.mp4", "/out", nil); err != nil {
		t.Fatalf("ExtractVideo returned error: %v", err)
	}

	args := captured[0]
	for _, want := range [][]string{
		{"-map", "0:v:0"},
		{"-c:v", "copy"},
		{"-hls_time", "6"},
		{"-hls_list_size", "0"},
	} {
		if !containsPair(args, want[0], want[1]) {
			t.Fatalf("expected %v in args %v", want, args)
		}
	}
	if !slices.Contains(args, "-an") {
		t.Fatalf("expected -an in args %v", args)
	}
	if args[len(args)-1] != "/out/video_only.m3u8" {
		t.Fatalf("expected playlist path as final arg, got %q", args[len(args)-1])
	}
}

func TestExtractAudioTrackBuildsTranscodeCommand(t *testing.T) {
	var captured [][]string
	stubCommand(t, &captured)

	cli := NewCLI()
	if err := cli.ExtractAudioTrack(context.Background(), "/media/in.mp4", "/out", 2, nil); err != nil {
		t.Fatalf("ExtractAudioTrack returned error: %v", err)
	}

	args := captured[0]
	for _, want := range [][]string{
		{"-map", "0:a:2"},
		{"-c:a", "aac"},
		{"-b:a", "128k"},
		{"-ac", "2"},
		{"-ar", "48000"},
		{"-profile:a", "aac_low"},
	} {
		if !containsPair(args, want[0], want[1]) {
			t.Fatalf("expected %v in args %v", want, args)
		}
	}
	if args[len(args)-1] != "/out/audio_track_2.m3u8" {
		t.Fatalf("expected track playlist as final arg, got %q", args[len(args)-1])
	}
}

func TestExtractAudioTrackRejectsNegativeIndex(t *testing.T) {
	cli := NewCLI()
	if err := cli.ExtractAudioTrack(context.Background(), "/media/in.mp4", "/out", -1, nil); err == nil {
		t.Fatal("expected error for negative track index")
	}
}

func TestThumbnailBuildsSingleFrameCommand(t *testing.T) {
	var captured [][]string
	stubCommand(t, &captured)

	cli := NewCLI()
	if err := cli.Thumbnail(context.Background(), "/media/in.mp4", "/out/thumb.jpg", "0:12:30"); err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}

	args := captured[0]
	if !containsPair(args, "-ss", "0:12:30") {
		t.Fatalf("expected seek timestamp in args %v", args)
	}
	if !containsPair(args, "-vframes", "1") {
		t.Fatalf("expected single frame flag in args %v", args)
	}
}

func TestRunStreamsOutputLines(t *testing.T) {
	stubCommand(t, nil, "FFMPEG_HELPER_MODE=lines")

	var lines []string
	cli := NewCLI()
	err := cli.ExtractVideo(context.Background(), "/media/in.mp4", "/out", func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("ExtractVideo returned error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected streamed lines, got %v", lines)
	}
	if !strings.Contains(strings.Join(lines, "\n"), "time=00:00:12.00") {
		t.Fatalf("expected progress line, got %v", lines)
	}
}

func TestRunReportsExitFailure(t *testing.T) {
	stubCommand(t, nil, "FFMPEG_HELPER_MODE=fail")

	cli := NewCLI()
	err := cli.ExtractVideo(context.Background(), "/media/in.mp4", "/out", nil)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "stream 0:v:0 not found") {
		t.Fatalf("expected final stderr line in error, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "lines":
		os.Stderr.WriteString("frame=  100 fps= 25 time=00:00:04.00 bitrate= 900.0kbits/s\n")
		os.Stderr.WriteString("frame=  300 fps= 25 time=00:00:12.00 bitrate= 905.0kbits/s\n")
	case "fail":
		os.Stderr.WriteString("Stream map '0:v:0' matches no streams.\n")
		os.Stderr.WriteString("stream 0:v:0 not found\n")
		os.Exit(1)
	}
	os.Exit(0)
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
