package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"playden/internal/hls"
	"playden/internal/logging"
	"playden/internal/metrics"
	"playden/internal/services/ffmpeg"
	"playden/internal/store"
)

// Exact failure messages recorded on the video when a required step fails.
const (
	msgVideoExtractFailed  = "Failed to extract video stream"
	msgNoAudioTracks       = "No audio tracks found"
	msgMasterPlaylistError = "Failed to generate master playlist"
)

// process drives one video through the full transcoding state machine.
// Failures mark the record failed and leave any partial output on disk.
func (p *Pool) process(ctx context.Context, job Job) {
	logger := p.logger.With(logging.String(logging.FieldVideoID, job.VideoID))
	started := time.Now()

	if err := p.store.MarkProcessing(ctx, job.VideoID); err != nil {
		logger.Error("mark processing", logging.Error(err))
		return
	}
	p.setProgress(ctx, logger, job.VideoID, 5)

	outputDir := p.cfg.VideoOutputDir(job.VideoID)

	videoWindow := ffmpeg.NewWindow(5, 15, job.Info.Duration, func(percent int) {
		p.setProgress(ctx, logger, job.VideoID, percent)
	})
	if err := p.extractor.ExtractVideo(ctx, job.SourcePath, outputDir, videoWindow.Line); err != nil {
		logger.Error("video rendition failed",
			logging.String(logging.FieldStep, "video"),
			logging.Error(err))
		p.fail(ctx, logger, job, started, msgVideoExtractFailed)
		return
	}
	p.setProgress(ctx, logger, job.VideoID, 15)

	tracks := job.Info.AudioTracks
	if len(tracks) == 0 {
		p.fail(ctx, logger, job, started, msgNoAudioTracks)
		return
	}

	defaultAssigned := false
	for i, track := range tracks {
		low := 15 + (i*70)/len(tracks)
		high := 15 + ((i+1)*70)/len(tracks)
		if high > 85 {
			high = 85
		}

		trackLogger := logger.With(
			logging.String(logging.FieldStep, "audio"),
			logging.Int(logging.FieldTrack, track.Index))

		window := ffmpeg.NewWindow(low, high, job.Info.Duration, func(percent int) {
			p.setProgress(ctx, logger, job.VideoID, percent)
		})
		if err := p.extractor.ExtractAudioTrack(ctx, job.SourcePath, outputDir, track.Index, window.Line); err != nil {
			// A bad track is skipped; the remaining tracks still ship.
			trackLogger.Warn("audio rendition failed, skipping track", logging.Error(err))
			metrics.AudioTracksExtracted.WithLabelValues("failure").Inc()
			p.setProgress(ctx, logger, job.VideoID, high)
			continue
		}

		record := &store.AudioTrack{
			VideoID:         job.VideoID,
			TrackIndex:      track.Index,
			Language:        track.Language,
			Title:           track.Title,
			Codec:           p.cfg.Audio.Codec,
			Channels:        p.cfg.Audio.Channels,
			SampleRate:      p.cfg.Audio.SampleRate,
			IsDefault:       !defaultAssigned,
			HLSPlaylistPath: hls.AudioPlaylistName(track.Index),
		}
		if err := p.store.CreateAudioTrack(ctx, record); err != nil {
			trackLogger.Error("record audio track", logging.Error(err))
			metrics.AudioTracksExtracted.WithLabelValues("failure").Inc()
			p.setProgress(ctx, logger, job.VideoID, high)
			continue
		}
		defaultAssigned = true
		metrics.AudioTracksExtracted.WithLabelValues("success").Inc()
		p.setProgress(ctx, logger, job.VideoID, high)
	}

	recorded, err := p.store.AudioTracks(ctx, job.VideoID)
	if err != nil {
		logger.Error("read back audio tracks", logging.Error(err))
		p.fail(ctx, logger, job, started, msgMasterPlaylistError)
		return
	}
	renditions := make([]hls.AudioRendition, 0, len(recorded))
	for _, track := range recorded {
		renditions = append(renditions, hls.AudioRendition{
			Language: track.Language,
			Name:     track.Title,
			Default:  track.IsDefault,
			URI:      track.HLSPlaylistPath,
		})
	}
	if err := hls.WriteMasterPlaylist(outputDir, renditions); err != nil {
		logger.Error("master playlist failed", logging.Error(err))
		p.fail(ctx, logger, job, started, msgMasterPlaylistError)
		return
	}
	p.setProgress(ctx, logger, job.VideoID, 90)

	thumbnailFile := filepath.Join(outputDir, hls.ThumbnailName)
	if err := p.extractor.Thumbnail(ctx, job.SourcePath, thumbnailFile, thumbnailTimestamp(job.Info.Duration)); err != nil {
		// Playback works without a poster frame.
		logger.Warn("thumbnail failed", logging.Error(err))
	}
	p.setProgress(ctx, logger, job.VideoID, 95)

	// Path fields hold bare file names; the serving layer resolves them
	// against the per-video directory.
	if err := p.store.MarkReady(ctx, job.VideoID, hls.MasterPlaylistName, hls.ThumbnailName); err != nil {
		logger.Error("mark ready", logging.Error(err))
		return
	}

	metrics.JobsCompletedTotal.WithLabelValues(string(store.StatusReady)).Inc()
	metrics.JobDuration.Observe(time.Since(started).Seconds())
	logger.Info("job completed",
		logging.Int("audio_tracks", len(recorded)),
		logging.Duration("elapsed", time.Since(started)))
}

func (p *Pool) fail(ctx context.Context, logger *slog.Logger, job Job, started time.Time, message string) {
	if err := p.store.MarkFailed(ctx, job.VideoID, message); err != nil {
		logger.Error("mark failed", logging.Error(err))
	}
	metrics.JobsCompletedTotal.WithLabelValues(string(store.StatusFailed)).Inc()
	metrics.JobDuration.Observe(time.Since(started).Seconds())
	logger.Info("job failed", logging.String("reason", message))
}

func (p *Pool) setProgress(ctx context.Context, logger *slog.Logger, videoID string, percent int) {
	if err := p.store.SetProgress(ctx, videoID, percent); err != nil {
		logger.Warn("set progress", logging.Int(logging.FieldProgress, percent), logging.Error(err))
	}
}

// thumbnailTimestamp picks the poster frame position, a tenth of the way in.
func thumbnailTimestamp(durationSeconds float64) string {
	seconds := int(durationSeconds * 0.1)
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
