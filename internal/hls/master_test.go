package hls

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMasterPlaylistWithRenditions(t *testing.T) {
	playlist := MasterPlaylist([]AudioRendition{
		{Language: "eng", Name: "English", Default: true, URI: "audio_track_0.m3u8"},
		{Language: "jpn", Name: "Japanese", Default: false, URI: "audio_track_2.m3u8"},
	})

	lines := strings.Split(strings.TrimRight(playlist, "\n"), "\n")
	if lines[0] != "#EXTM3U" {
		t.Fatalf("expected #EXTM3U header, got %q", lines[0])
	}
	if !strings.Contains(playlist, `LANGUAGE="eng",NAME="English",DEFAULT=YES,AUTOSELECT=YES,URI="audio_track_0.m3u8"`) {
		t.Fatalf("expected default english rendition entry, got:\n%s", playlist)
	}
	if !strings.Contains(playlist, `LANGUAGE="jpn",NAME="Japanese",DEFAULT=NO`) {
		t.Fatalf("expected non-default japanese rendition entry, got:\n%s", playlist)
	}
	if !strings.Contains(playlist, `AUDIO="audio"`) {
		t.Fatalf("expected variant to reference the audio group, got:\n%s", playlist)
	}
	if lines[len(lines)-1] != VideoPlaylistName {
		t.Fatalf("expected variant URI as final line, got %q", lines[len(lines)-1])
	}
}

func TestMasterPlaylistWithoutRenditions(t *testing.T) {
	playlist := MasterPlaylist(nil)

	if strings.Contains(playlist, "#EXT-X-MEDIA") {
		t.Fatalf("expected no media lines for empty rendition list, got:\n%s", playlist)
	}
	if strings.Contains(playlist, `AUDIO="audio"`) {
		t.Fatalf("variant must not reference an empty audio group, got:\n%s", playlist)
	}
	if !strings.Contains(playlist, "#EXT-X-STREAM-INF:BANDWIDTH=") {
		t.Fatalf("expected video variant present, got:\n%s", playlist)
	}
	if !strings.Contains(playlist, VideoPlaylistName) {
		t.Fatalf("expected video playlist URI, got:\n%s", playlist)
	}
}

func TestWriteMasterPlaylist(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMasterPlaylist(dir, nil); err != nil {
		t.Fatalf("WriteMasterPlaylist failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, MasterPlaylistName))
	if err != nil {
		t.Fatalf("read master playlist: %v", err)
	}
	if !strings.HasPrefix(string(data), "#EXTM3U") {
		t.Fatalf("unexpected playlist content: %q", string(data))
	}
}

func TestAudioNames(t *testing.T) {
	if got := AudioPlaylistName(3); got != "audio_track_3.m3u8" {
		t.Fatalf("unexpected playlist name: %q", got)
	}
	if got := AudioSegmentPattern(3); got != "audio_3_segment_%03d.ts" {
		t.Fatalf("unexpected segment pattern: %q", got)
	}
}
