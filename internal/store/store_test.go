package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"playden/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.VideoDir = filepath.Join(dir, "videos")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.DBPath = filepath.Join(dir, "playden.db")

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func newTestVideo(id string) *Video {
	return &Video{
		ID:               id,
		Filename:         "original.mp4",
		OriginalFilename: "movie.mp4",
		Duration:         120.5,
		Width:            1920,
		Height:           1080,
		FrameRate:        23.976,
		VideoCodec:       "h264",
		FileSize:         1 << 20,
	}
}

func TestCreateAndGetVideo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	video := newTestVideo("vid-1")
	if err := store.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}

	got, err := store.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetVideo() returned nil for existing video")
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, StatusPending)
	}
	if got.Progress != 0 {
		t.Errorf("Progress = %d, want 0", got.Progress)
	}
	if got.VideoCodec != "h264" {
		t.Errorf("VideoCodec = %q, want h264", got.VideoCodec)
	}
	if got.Duration != 120.5 {
		t.Errorf("Duration = %v, want 120.5", got.Duration)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not persisted")
	}
	if got.ProcessedAt != nil {
		t.Error("ProcessedAt should be nil before processing")
	}
}

func TestGetVideoMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetVideo(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetVideo() = %+v, want nil for missing id", got)
	}
}

func TestStatusTransitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateVideo(ctx, newTestVideo("vid-1")); err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}

	if err := store.MarkProcessing(ctx, "vid-1"); err != nil {
		t.Fatalf("MarkProcessing() error = %v", err)
	}
	if err := store.SetProgress(ctx, "vid-1", 42); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}

	got, err := store.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.Status != StatusProcessing {
		t.Errorf("Status = %q, want %q", got.Status, StatusProcessing)
	}
	if got.Progress != 42 {
		t.Errorf("Progress = %d, want 42", got.Progress)
	}

	if err := store.MarkReady(ctx, "vid-1", "/videos/vid-1/playlist_master.m3u8", "/videos/vid-1/thumb.jpg"); err != nil {
		t.Fatalf("MarkReady() error = %v", err)
	}
	got, err = store.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.Status != StatusReady {
		t.Errorf("Status = %q, want %q", got.Status, StatusReady)
	}
	if got.Progress != 100 {
		t.Errorf("Progress = %d, want 100", got.Progress)
	}
	if got.HLSMasterPath == "" || got.ThumbnailPath == "" {
		t.Error("output paths were not persisted")
	}
	if got.ProcessedAt == nil {
		t.Error("ProcessedAt not set on ready")
	} else if time.Since(*got.ProcessedAt) > time.Minute {
		t.Errorf("ProcessedAt = %v, not recent", got.ProcessedAt)
	}
}

func TestMarkFailed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateVideo(ctx, newTestVideo("vid-1")); err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}
	if err := store.MarkFailed(ctx, "vid-1", "Failed to extract video stream"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	got, err := store.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", got.Status, StatusFailed)
	}
	if got.ErrorMessage != "Failed to extract video stream" {
		t.Errorf("ErrorMessage = %q", got.ErrorMessage)
	}

	// Re-processing clears the failure.
	if err := store.MarkProcessing(ctx, "vid-1"); err != nil {
		t.Fatalf("MarkProcessing() error = %v", err)
	}
	got, err = store.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want cleared", got.ErrorMessage)
	}
	if got.Progress != 0 {
		t.Errorf("Progress = %d, want reset to 0", got.Progress)
	}
}

func TestListVideosOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		video := newTestVideo(id)
		video.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.CreateVideo(ctx, video); err != nil {
			t.Fatalf("CreateVideo(%s) error = %v", id, err)
		}
	}

	videos, err := store.ListVideos(ctx)
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}
	if len(videos) != 3 {
		t.Fatalf("len(videos) = %d, want 3", len(videos))
	}
	want := []string{"new", "mid", "old"}
	for i, w := range want {
		if videos[i].ID != w {
			t.Errorf("videos[%d].ID = %q, want %q", i, videos[i].ID, w)
		}
	}
}

func TestVideosByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.CreateVideo(ctx, newTestVideo(id)); err != nil {
			t.Fatalf("CreateVideo(%s) error = %v", id, err)
		}
	}
	if err := store.MarkProcessing(ctx, "b"); err != nil {
		t.Fatalf("MarkProcessing() error = %v", err)
	}

	pending, err := store.VideosByStatus(ctx, StatusPending)
	if err != nil {
		t.Fatalf("VideosByStatus() error = %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending count = %d, want 2", len(pending))
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := store.CreateVideo(ctx, newTestVideo(id)); err != nil {
			t.Fatalf("CreateVideo(%s) error = %v", id, err)
		}
		if err := store.MarkProcessing(ctx, id); err != nil {
			t.Fatalf("MarkProcessing(%s) error = %v", id, err)
		}
	}
	if err := store.SetProgress(ctx, "a", 55); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing() error = %v", err)
	}
	if reset != 2 {
		t.Errorf("reset = %d, want 2", reset)
	}

	got, err := store.GetVideo(ctx, "a")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, StatusPending)
	}
	if got.Progress != 0 {
		t.Errorf("Progress = %d, want 0", got.Progress)
	}
}

func TestAudioTracks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateVideo(ctx, newTestVideo("vid-1")); err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}

	tracks := []*AudioTrack{
		{VideoID: "vid-1", TrackIndex: 1, Language: "jpn", Title: "Audio Track 2", Codec: "aac", Channels: 2, SampleRate: 48000, HLSPlaylistPath: "audio_track_1.m3u8"},
		{VideoID: "vid-1", TrackIndex: 0, Language: "eng", Title: "Audio Track 1", Codec: "aac", Channels: 6, SampleRate: 48000, IsDefault: true, HLSPlaylistPath: "audio_track_0.m3u8"},
	}
	for _, track := range tracks {
		if err := store.CreateAudioTrack(ctx, track); err != nil {
			t.Fatalf("CreateAudioTrack() error = %v", err)
		}
		if track.ID == 0 {
			t.Error("CreateAudioTrack() did not assign an id")
		}
	}

	got, err := store.AudioTracks(ctx, "vid-1")
	if err != nil {
		t.Fatalf("AudioTracks() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(tracks) = %d, want 2", len(got))
	}
	if got[0].TrackIndex != 0 || got[1].TrackIndex != 1 {
		t.Errorf("tracks not ordered by index: %d, %d", got[0].TrackIndex, got[1].TrackIndex)
	}
	if !got[0].IsDefault {
		t.Error("track 0 should be default")
	}
	if got[1].IsDefault {
		t.Error("track 1 should not be default")
	}
	if got[0].Channels != 6 {
		t.Errorf("Channels = %d, want 6", got[0].Channels)
	}

	count, err := store.CountAudioTracks(ctx, "vid-1")
	if err != nil {
		t.Fatalf("CountAudioTracks() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestDeleteVideoCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateVideo(ctx, newTestVideo("vid-1")); err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}
	track := &AudioTrack{VideoID: "vid-1", TrackIndex: 0, Language: "eng", Codec: "aac", Channels: 2, SampleRate: 48000, IsDefault: true}
	if err := store.CreateAudioTrack(ctx, track); err != nil {
		t.Fatalf("CreateAudioTrack() error = %v", err)
	}

	deleted, err := store.DeleteVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("DeleteVideo() error = %v", err)
	}
	if !deleted {
		t.Fatal("DeleteVideo() = false, want true")
	}

	tracks, err := store.AudioTracks(ctx, "vid-1")
	if err != nil {
		t.Fatalf("AudioTracks() error = %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("len(tracks) = %d after cascade delete, want 0", len(tracks))
	}

	deleted, err = store.DeleteVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("DeleteVideo() error = %v", err)
	}
	if deleted {
		t.Error("DeleteVideo() = true for already deleted id")
	}
}

func TestIncrementWatchCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateVideo(ctx, newTestVideo("vid-1")); err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.IncrementWatchCount(ctx, "vid-1"); err != nil {
			t.Fatalf("IncrementWatchCount() error = %v", err)
		}
	}

	got, err := store.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.WatchCount != 3 {
		t.Errorf("WatchCount = %d, want 3", got.WatchCount)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := store.CreateVideo(ctx, newTestVideo(id)); err != nil {
			t.Fatalf("CreateVideo(%s) error = %v", id, err)
		}
	}
	if err := store.MarkProcessing(ctx, "b"); err != nil {
		t.Fatalf("MarkProcessing() error = %v", err)
	}
	if err := store.MarkReady(ctx, "c", "m.m3u8", "t.jpg"); err != nil {
		t.Fatalf("MarkReady() error = %v", err)
	}
	if err := store.MarkFailed(ctx, "d", "No audio tracks found"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	counts, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if counts.Total != 4 {
		t.Errorf("Total = %d, want 4", counts.Total)
	}
	if counts.Pending != 1 || counts.Processing != 1 || counts.Ready != 1 || counts.Failed != 1 {
		t.Errorf("counts = %+v, want one of each", counts)
	}
}

func TestStatusHelpers(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusProcessing, StatusReady, StatusFailed} {
		if !status.Valid() {
			t.Errorf("%q should be valid", status)
		}
	}
	if Status("bogus").Valid() {
		t.Error("bogus status should not be valid")
	}
	if StatusPending.Terminal() || StatusProcessing.Terminal() {
		t.Error("pending/processing are not terminal")
	}
	if !StatusReady.Terminal() || !StatusFailed.Terminal() {
		t.Error("ready/failed are terminal")
	}
}
