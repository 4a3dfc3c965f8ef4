package store

import "time"

// Status represents the lifecycle of a video record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusReady,
	StatusFailed,
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	for _, status := range allStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a state that is never left.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Video represents one uploaded video persisted in SQLite.
//
// Invariants maintained by the pipeline: Progress is monotonically
// non-decreasing while Status is processing; ready implies Progress=100 with
// both path fields set; failed implies ErrorMessage is set.
type Video struct {
	ID               string
	Filename         string
	OriginalFilename string
	Status           Status
	Progress         int
	Duration         float64
	Width            int
	Height           int
	FrameRate        float64
	VideoCodec       string
	FileSize         int64
	HLSMasterPath    string
	ThumbnailPath    string
	ErrorMessage     string
	CreatedAt        time.Time
	ProcessedAt      *time.Time
	WatchCount       int
}

// AudioTrack is one successfully extracted audio rendition belonging to a
// video. Rows are written once, after extraction succeeds, and only removed
// by cascade when the video is deleted.
type AudioTrack struct {
	ID              int64
	VideoID         string
	TrackIndex      int
	Language        string
	Title           string
	Codec           string
	Channels        int
	SampleRate      int
	IsDefault       bool
	HLSPlaylistPath string
}

// StatusCounts aggregates video counts per lifecycle state.
type StatusCounts struct {
	Total      int
	Pending    int
	Processing int
	Ready      int
	Failed     int
}
