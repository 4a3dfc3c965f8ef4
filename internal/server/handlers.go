package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"playden/internal/logging"
	"playden/internal/media/checks"
	"playden/internal/metrics"
	"playden/internal/pipeline"
	"playden/internal/store"
)

// uploadFormField is the multipart field carrying the video file.
const uploadFormField = "file"

// multipartSlack covers multipart framing overhead beyond the payload cap.
const multipartSlack = 10 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	policy := checks.FromConfig(s.cfg)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxUploadBytes+multipartSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.writeError(w, http.StatusBadRequest, "Invalid upload request")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if err := policy.CheckUpload(header.Filename, header.Size); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.writeRejection(w, err)
		return
	}

	videoID := uuid.NewString()
	outputDir := s.cfg.VideoOutputDir(videoID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		s.logger.Error("create output dir", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	sourcePath := filepath.Join(outputDir, "original"+ext)
	written, err := saveUpload(sourcePath, file)
	if err != nil {
		s.logger.Error("save upload", logging.String(logging.FieldVideoID, videoID), logging.Error(err))
		s.discardUpload(outputDir)
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	if err := policy.CheckUpload(header.Filename, written); err != nil {
		s.discardUpload(outputDir)
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.writeRejection(w, err)
		return
	}

	probeCtx, cancel := context.WithTimeout(r.Context(), time.Duration(s.cfg.Tools.ProbeTimeoutSeconds)*time.Second)
	defer cancel()
	info, err := s.probe(probeCtx, s.cfg.Tools.FFprobe, sourcePath)
	if err != nil {
		s.logger.Warn("probe failed", logging.String(logging.FieldVideoID, videoID), logging.Error(err))
		s.discardUpload(outputDir)
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.writeError(w, http.StatusBadRequest, "Unable to read video metadata")
		return
	}
	if err := policy.CheckMedia(info); err != nil {
		s.discardUpload(outputDir)
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.writeRejection(w, err)
		return
	}

	video := &store.Video{
		ID:               videoID,
		Filename:         filepath.Base(sourcePath),
		OriginalFilename: header.Filename,
		Status:           store.StatusPending,
		Duration:         info.Duration,
		Width:            info.Width,
		Height:           info.Height,
		FrameRate:        info.FrameRate,
		VideoCodec:       info.VideoCodec,
		FileSize:         written,
	}
	if err := s.store.CreateVideo(r.Context(), video); err != nil {
		s.logger.Error("create video record", logging.String(logging.FieldVideoID, videoID), logging.Error(err))
		s.discardUpload(outputDir)
		s.writeError(w, http.StatusInternalServerError, "Failed to record upload")
		return
	}

	s.jobs.Enqueue(pipeline.Job{VideoID: videoID, SourcePath: sourcePath, Info: info})

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	metrics.UploadBytesTotal.Add(float64(written))
	s.logger.Info("upload accepted",
		logging.String(logging.FieldVideoID, videoID),
		logging.String("filename", header.Filename),
		logging.Int64("bytes", written))
	s.writeJSON(w, http.StatusOK, uploadResponse{Success: true, VideoID: videoID, Status: string(store.StatusPending)})
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.store.ListVideos(r.Context())
	if err != nil {
		s.logger.Error("list videos", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to list videos")
		return
	}

	out := make([]*videoJSON, 0, len(videos))
	for _, video := range videos {
		entry := newVideoJSON(video, nil)
		count, err := s.store.CountAudioTracks(r.Context(), video.ID)
		if err != nil {
			s.logger.Warn("count audio tracks", logging.String(logging.FieldVideoID, video.ID), logging.Error(err))
		}
		entry.AudioTrackCount = count
		out = append(out, entry)
	}
	s.writeJSON(w, http.StatusOK, videoListResponse{Success: true, Videos: out})
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	video := s.lookupVideo(w, r)
	if video == nil {
		return
	}
	tracks, err := s.store.AudioTracks(r.Context(), video.ID)
	if err != nil {
		s.logger.Error("list audio tracks", logging.String(logging.FieldVideoID, video.ID), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to load video")
		return
	}
	s.writeJSON(w, http.StatusOK, videoResponse{Success: true, Video: newVideoJSON(video, tracks)})
}

func (s *Server) handleVideoStatus(w http.ResponseWriter, r *http.Request) {
	video := s.lookupVideo(w, r)
	if video == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Success:      true,
		Status:       string(video.Status),
		Progress:     video.Progress,
		ErrorMessage: video.ErrorMessage,
	})
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	video := s.lookupVideo(w, r)
	if video == nil {
		return
	}
	if err := s.store.IncrementWatchCount(r.Context(), video.ID); err != nil {
		s.logger.Error("increment watch count", logging.String(logging.FieldVideoID, video.ID), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to record watch")
		return
	}
	metrics.WatchTotal.Inc()
	s.writeJSON(w, http.StatusOK, actionResponse{Success: true})
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	video := s.lookupVideo(w, r)
	if video == nil {
		return
	}
	if video.Status == store.StatusProcessing {
		s.writeError(w, http.StatusConflict, "Video is currently processing")
		return
	}

	deleted, err := s.store.DeleteVideo(r.Context(), video.ID)
	if err != nil {
		s.logger.Error("delete video", logging.String(logging.FieldVideoID, video.ID), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to delete video")
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	if err := os.RemoveAll(s.cfg.VideoOutputDir(video.ID)); err != nil {
		s.logger.Warn("remove output dir", logging.String(logging.FieldVideoID, video.ID), logging.Error(err))
	}
	s.logger.Info("video deleted", logging.String(logging.FieldVideoID, video.ID))
	s.writeJSON(w, http.StatusOK, actionResponse{Success: true})
}

func (s *Server) handleVideoFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	videoID := vars["id"]
	name := vars["file"]

	if _, err := uuid.Parse(videoID); err != nil {
		s.writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	if !safeFileName(name) {
		s.writeError(w, http.StatusNotFound, "File not found")
		return
	}

	path := filepath.Join(s.cfg.VideoOutputDir(videoID), name)
	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		s.writeError(w, http.StatusNotFound, "File not found")
		return
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u8":
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	case ".ts":
		w.Header().Set("Content-Type", "video/mp2t")
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("load stats", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	s.writeJSON(w, http.StatusOK, daemonStatusResponse{
		Success:    true,
		ActiveJobs: s.jobs.Active(),
		QueuedJobs: s.jobs.QueueDepth(),
		Stats:      stats,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, actionResponse{Success: true})
}

// lookupVideo resolves {id} and writes a 404 when the record is missing.
func (s *Server) lookupVideo(w http.ResponseWriter, r *http.Request) *store.Video {
	id := mux.Vars(r)["id"]
	video, err := s.store.GetVideo(r.Context(), id)
	if err != nil {
		s.logger.Error("get video", logging.String(logging.FieldVideoID, id), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to load video")
		return nil
	}
	if video == nil {
		s.writeError(w, http.StatusNotFound, "Video not found")
		return nil
	}
	return video
}

func (s *Server) writeRejection(w http.ResponseWriter, err error) {
	var rejection *checks.RejectionError
	if errors.As(err, &rejection) {
		s.writeError(w, http.StatusBadRequest, rejection.Reason)
		return
	}
	s.writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) discardUpload(outputDir string) {
	if err := os.RemoveAll(outputDir); err != nil {
		s.logger.Warn("discard upload dir", logging.Error(err))
	}
}

func saveUpload(path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	return written, err
}

// safeFileName accepts only bare file names addressing the flat per-video
// output directory.
func safeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return true
}
