package server

import (
	"encoding/json"
	"net/http"
	"time"

	"playden/internal/logging"
	"playden/internal/store"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type videoResponse struct {
	Success bool       `json:"success"`
	Video   *videoJSON `json:"video"`
}

type videoListResponse struct {
	Success bool         `json:"success"`
	Videos  []*videoJSON `json:"videos"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
}

type statusResponse struct {
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type actionResponse struct {
	Success bool `json:"success"`
}

type daemonStatusResponse struct {
	Success    bool               `json:"success"`
	ActiveJobs int                `json:"active_jobs"`
	QueuedJobs int                `json:"queued_jobs"`
	Stats      store.StatusCounts `json:"stats"`
}

type videoJSON struct {
	ID               string           `json:"id"`
	OriginalFilename string           `json:"original_filename"`
	Status           string           `json:"status"`
	Progress         int              `json:"progress"`
	Duration         float64          `json:"duration"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	FrameRate        float64          `json:"frame_rate"`
	VideoCodec       string           `json:"video_codec"`
	FileSize         int64            `json:"file_size"`
	HLSMasterPath    string           `json:"hls_master_path,omitempty"`
	ThumbnailPath    string           `json:"thumbnail_path,omitempty"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	CreatedAt        string           `json:"created_at"`
	ProcessedAt      string           `json:"processed_at,omitempty"`
	WatchCount       int              `json:"watch_count"`
	AudioTrackCount  int              `json:"audio_track_count"`
	AudioTracks      []audioTrackJSON `json:"audio_tracks,omitempty"`
}

type audioTrackJSON struct {
	TrackIndex int    `json:"track_index"`
	Language   string `json:"language"`
	Title      string `json:"title"`
	Codec      string `json:"codec"`
	Channels   int    `json:"channels"`
	SampleRate int    `json:"sample_rate"`
	IsDefault  bool   `json:"is_default"`
	Playlist   string `json:"playlist"`
}

func newVideoJSON(video *store.Video, tracks []*store.AudioTrack) *videoJSON {
	out := &videoJSON{
		ID:               video.ID,
		OriginalFilename: video.OriginalFilename,
		Status:           string(video.Status),
		Progress:         video.Progress,
		Duration:         video.Duration,
		Width:            video.Width,
		Height:           video.Height,
		FrameRate:        video.FrameRate,
		VideoCodec:       video.VideoCodec,
		FileSize:         video.FileSize,
		HLSMasterPath:    video.HLSMasterPath,
		ThumbnailPath:    video.ThumbnailPath,
		ErrorMessage:     video.ErrorMessage,
		CreatedAt:        video.CreatedAt.Format(time.RFC3339),
		WatchCount:       video.WatchCount,
	}
	if video.ProcessedAt != nil {
		out.ProcessedAt = video.ProcessedAt.Format(time.RFC3339)
	}
	out.AudioTrackCount = len(tracks)
	for _, track := range tracks {
		out.AudioTracks = append(out.AudioTracks, audioTrackJSON{
			TrackIndex: track.TrackIndex,
			Language:   track.Language,
			Title:      track.Title,
			Codec:      track.Codec,
			Channels:   track.Channels,
			SampleRate: track.SampleRate,
			IsDefault:  track.IsDefault,
			Playlist:   track.HLSPlaylistPath,
		})
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, errorResponse{Success: false, Error: message})
}
