package hls

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fixed file names inside a per-video output directory. The serving layer
// resolves these relative to the directory addressed by video id.
const (
	MasterPlaylistName = "playlist_master.m3u8"
	VideoPlaylistName  = "video_only.m3u8"
	ThumbnailName      = "thumb.jpg"

	VideoSegmentPattern = "video_segment_%03d.ts"
)

// Nominal bandwidth declared for the single video variant. The video stream
// is copied, not encoded, so no measured value exists at playlist time.
const variantBandwidth = 4000000

const variantCodecs = "avc1.640029,mp4a.40.2"

// AudioPlaylistName returns the playlist file name for one audio track.
func AudioPlaylistName(trackIndex int) string {
	return fmt.Sprintf("audio_track_%d.m3u8", trackIndex)
}

// AudioSegmentPattern returns the ffmpeg segment filename pattern for one
// audio track.
func AudioSegmentPattern(trackIndex int) string {
	return fmt.Sprintf("audio_%d_segment_%%03d.ts", trackIndex)
}

// AudioRendition describes one alternate audio entry in the master playlist.
type AudioRendition struct {
	Language string
	Name     string
	Default  bool
	URI      string
}

// MasterPlaylist assembles the multivariant playlist referencing the
// video-only rendition and every recorded audio rendition. With no
// renditions the result is a valid video-only playlist.
func MasterPlaylist(renditions []AudioRendition) string {
	lines := []string{
		"#EXTM3U",
		"#EXT-X-VERSION:3",
		"#EXT-X-INDEPENDENT-SEGMENTS",
	}

	for _, rendition := range renditions {
		flag := "NO"
		if rendition.Default {
			flag = "YES"
		}
		lines = append(lines, fmt.Sprintf(
			`#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",LANGUAGE="%s",NAME="%s",DEFAULT=%s,AUTOSELECT=YES,URI="%s"`,
			rendition.Language, rendition.Name, flag, rendition.URI,
		))
	}

	variant := fmt.Sprintf(`#EXT-X-STREAM-INF:BANDWIDTH=%d,CODECS="%s"`, variantBandwidth, variantCodecs)
	if len(renditions) > 0 {
		variant += `,AUDIO="audio"`
	}
	lines = append(lines, variant, VideoPlaylistName)

	return strings.Join(lines, "\n") + "\n"
}

// WriteMasterPlaylist renders the master playlist into the output directory.
func WriteMasterPlaylist(outputDir string, renditions []AudioRendition) error {
	path := filepath.Join(outputDir, MasterPlaylistName)
	if err := os.WriteFile(path, []byte(MasterPlaylist(renditions)), 0o644); err != nil {
		return fmt.Errorf("write master playlist: %w", err)
	}
	return nil
}
