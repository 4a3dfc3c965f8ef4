package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"playden/internal/config"
)

// Store manages video persistence backed by SQLite.
//
// Every operation is a short, independent statement; the pipeline never holds
// a transaction across steps. SQLite's own serialization is what makes
// cross-worker access safe.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.DBPath
	// busy_timeout and foreign_keys are per-connection; passing them in the
	// DSN makes modernc.org/sqlite apply them to every pooled connection.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CreateVideo inserts a new record in pending state with the probed metadata.
func (s *Store) CreateVideo(ctx context.Context, video *Video) error {
	if video == nil {
		return errors.New("video is nil")
	}
	if video.ID == "" {
		return errors.New("video id required")
	}
	if video.Status == "" {
		video.Status = StatusPending
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO videos (
            id, filename, original_filename, status, progress,
            duration, width, height, frame_rate, video_codec,
            file_size, created_at, watch_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		video.ID,
		video.Filename,
		video.OriginalFilename,
		video.Status,
		video.Progress,
		video.Duration,
		video.Width,
		video.Height,
		video.FrameRate,
		nullableString(video.VideoCodec),
		video.FileSize,
		video.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// GetVideo fetches a video by id; a missing record returns (nil, nil).
func (s *Store) GetVideo(ctx context.Context, id string) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// ListVideos returns all videos ordered by recency.
func (s *Store) ListVideos(ctx context.Context) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// VideosByStatus returns videos matching a status ordered by creation time.
func (s *Store) VideosByStatus(ctx context.Context, status Status) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// MarkProcessing transitions a video into processing and resets progress.
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE videos SET status = ?, progress = 0, error_message = NULL WHERE id = ?`,
		StatusProcessing,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

// SetProgress records the current progress percentage.
func (s *Store) SetProgress(ctx context.Context, id string, progress int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE videos SET progress = ? WHERE id = ?`, progress, id)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// MarkReady finalizes a successfully processed video.
func (s *Store) MarkReady(ctx context.Context, id, masterPath, thumbnailPath string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE videos
         SET status = ?, progress = 100, hls_master_path = ?, thumbnail_path = ?, processed_at = ?
         WHERE id = ?`,
		StatusReady,
		masterPath,
		thumbnailPath,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure with its triggering message.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE videos SET status = ?, error_message = ? WHERE id = ?`,
		StatusFailed,
		message,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// ResetStuckProcessing returns videos left in processing (by a crash or
// unclean shutdown) to pending so they can be re-enqueued.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE videos SET status = ?, progress = 0, error_message = NULL WHERE status = ?`,
		StatusPending,
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck videos: %w", err)
	}
	return res.RowsAffected()
}

// DeleteVideo removes a video; audio tracks cascade. Reports whether a row
// was deleted.
func (s *Store) DeleteVideo(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// IncrementWatchCount bumps the playback counter.
func (s *Store) IncrementWatchCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE videos SET watch_count = watch_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment watch count: %w", err)
	}
	return nil
}

// CreateAudioTrack records one successfully extracted audio rendition.
func (s *Store) CreateAudioTrack(ctx context.Context, track *AudioTrack) error {
	if track == nil {
		return errors.New("track is nil")
	}
	if track.VideoID == "" {
		return errors.New("track video id required")
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO audio_tracks (
            video_id, track_index, language, title, codec,
            channels, sample_rate, is_default, hls_playlist_path
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.VideoID,
		track.TrackIndex,
		track.Language,
		track.Title,
		track.Codec,
		track.Channels,
		track.SampleRate,
		boolToInt(track.IsDefault),
		track.HLSPlaylistPath,
	)
	if err != nil {
		return fmt.Errorf("insert audio track: %w", err)
	}
	track.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// AudioTracks returns a video's recorded tracks ordered by source index.
func (s *Store) AudioTracks(ctx context.Context, videoID string) ([]*AudioTrack, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, video_id, track_index, language, title, codec, channels, sample_rate, is_default, hls_playlist_path
         FROM audio_tracks WHERE video_id = ? ORDER BY track_index`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audio tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*AudioTrack
	for rows.Next() {
		var (
			track      AudioTrack
			language   sql.NullString
			title      sql.NullString
			codec      sql.NullString
			channels   sql.NullInt64
			sampleRate sql.NullInt64
			isDefault  sql.NullInt64
			playlist   sql.NullString
		)
		if err := rows.Scan(
			&track.ID,
			&track.VideoID,
			&track.TrackIndex,
			&language,
			&title,
			&codec,
			&channels,
			&sampleRate,
			&isDefault,
			&playlist,
		); err != nil {
			return nil, err
		}
		track.Language = language.String
		track.Title = title.String
		track.Codec = codec.String
		track.Channels = int(channels.Int64)
		track.SampleRate = int(sampleRate.Int64)
		track.IsDefault = isDefault.Int64 != 0
		track.HLSPlaylistPath = playlist.String
		tracks = append(tracks, &track)
	}
	return tracks, rows.Err()
}

// CountAudioTracks returns the number of recorded tracks for a video.
func (s *Store) CountAudioTracks(ctx context.Context, videoID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM audio_tracks WHERE video_id = ?`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audio tracks: %w", err)
	}
	return count, nil
}

// Stats returns video counts grouped by status.
func (s *Store) Stats(ctx context.Context) (StatusCounts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM videos GROUP BY status`)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("video stats: %w", err)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return StatusCounts{}, err
		}
		counts.Total += count
		switch status {
		case StatusPending:
			counts.Pending = count
		case StatusProcessing:
			counts.Processing = count
		case StatusReady:
			counts.Ready = count
		case StatusFailed:
			counts.Failed = count
		}
	}
	return counts, rows.Err()
}

const videoColumns = "id, filename, original_filename, status, progress, duration, width, height, frame_rate, video_codec, file_size, hls_master_path, thumbnail_path, error_message, created_at, processed_at, watch_count"

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		video        Video
		statusStr    string
		duration     sql.NullFloat64
		width        sql.NullInt64
		height       sql.NullInt64
		frameRate    sql.NullFloat64
		videoCodec   sql.NullString
		fileSize     sql.NullInt64
		masterPath   sql.NullString
		thumbnail    sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		processedRaw sql.NullString
	)

	if err := scanner.Scan(
		&video.ID,
		&video.Filename,
		&video.OriginalFilename,
		&statusStr,
		&video.Progress,
		&duration,
		&width,
		&height,
		&frameRate,
		&videoCodec,
		&fileSize,
		&masterPath,
		&thumbnail,
		&errorMessage,
		&createdRaw,
		&processedRaw,
		&video.WatchCount,
	); err != nil {
		return nil, err
	}

	video.Status = Status(statusStr)
	video.Duration = duration.Float64
	video.Width = int(width.Int64)
	video.Height = int(height.Int64)
	video.FrameRate = frameRate.Float64
	video.VideoCodec = videoCodec.String
	video.FileSize = fileSize.Int64
	video.HLSMasterPath = masterPath.String
	video.ThumbnailPath = thumbnail.String
	video.ErrorMessage = errorMessage.String

	if created, err := parseTimeString(createdRaw); err == nil {
		video.CreatedAt = created
	}
	if processedRaw.Valid {
		if processed, err := parseTimeString(processedRaw.String); err == nil {
			video.ProcessedAt = &processed
		}
	}
	return &video, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
