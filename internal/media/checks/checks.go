package checks

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"playden/internal/config"
	"playden/internal/media/ffprobe"
)

// Accepted container extensions, lowercase, dot included.
var allowedExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".mov":  {},
	".m4v":  {},
	".ts":   {},
	".m2ts": {},
	".webm": {},
}

// Accepted H.264 codec name aliases as reported by ffprobe.
var allowedVideoCodecs = map[string]struct{}{
	"h264": {},
	"avc":  {},
	"avc1": {},
}

const (
	minHeight = 360
	maxHeight = 4320
)

// RejectionError carries the user-facing reason an upload was refused.
// Every rule produces a distinct reason so callers can display it directly.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &RejectionError{Reason: fmt.Sprintf(format, args...)}
}

// Policy is the fixed acceptance policy applied before disk and CPU are
// committed to an upload.
type Policy struct {
	MaxUploadBytes int64
}

// FromConfig builds the policy from the loaded configuration.
func FromConfig(cfg *config.Config) Policy {
	return Policy{MaxUploadBytes: cfg.Upload.MaxUploadBytes}
}

// CheckUpload applies the rules decidable from the filename and size alone.
func (p Policy) CheckUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		if ext == "" {
			ext = filepath.Ext(filename)
		}
		return reject("File type %s is not supported. Allowed: %s", ext, allowedExtensionList())
	}
	if size <= 0 || size > p.MaxUploadBytes {
		return reject("File size exceeds maximum limit of %dGB", p.MaxUploadBytes>>30)
	}
	return nil
}

// CheckMedia applies the rules that need probed metadata: required video
// codec, audio presence, and vertical resolution bounds.
func (p Policy) CheckMedia(info ffprobe.Info) error {
	if !info.HasVideo() {
		return reject("No video stream found")
	}
	if _, ok := allowedVideoCodecs[info.VideoCodec]; !ok {
		return reject("Video codec must be H.264. Found: %s. Please convert to H.264 before uploading.", strings.ToUpper(info.VideoCodec))
	}
	if len(info.AudioTracks) == 0 {
		return reject("Video must have at least one audio track")
	}
	if info.Height < minHeight {
		return reject("Minimum resolution is %dp", minHeight)
	}
	if info.Height > maxHeight {
		return reject("Maximum resolution is 8K (%dp)", maxHeight)
	}
	return nil
}

func allowedExtensionList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
