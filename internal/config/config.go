package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, database, and bind address configuration.
type Paths struct {
	VideoDir string `toml:"video_dir"`
	LogDir   string `toml:"log_dir"`
	DBPath   string `toml:"db_path"`
	Bind     string `toml:"bind"`
}

// Upload contains limits applied before a file is accepted.
type Upload struct {
	MaxUploadBytes int64 `toml:"max_upload_bytes"`
}

// Audio contains the fixed output policy for HLS audio renditions.
type Audio struct {
	Codec      string `toml:"codec"`
	Bitrate    string `toml:"bitrate"`
	Channels   int    `toml:"channels"`
	SampleRate int    `toml:"sample_rate"`
}

// HLS contains segmenting parameters shared by all renditions.
type HLS struct {
	SegmentSeconds int `toml:"segment_seconds"`
}

// Workers contains the processing pool size.
type Workers struct {
	Count int `toml:"count"`
}

// Tools contains external binary names and invocation limits.
type Tools struct {
	FFmpeg              string `toml:"ffmpeg"`
	FFprobe             string `toml:"ffprobe"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for playden.
//
// Configuration sections by subsystem:
//   - Paths: video/log directories, database path, API bind address
//   - Upload: size limits enforced before committing disk space
//   - Audio: output policy for transcoded audio renditions
//   - HLS: segment duration for all generated playlists
//   - Workers: processing pool size
//   - Tools: ffmpeg/ffprobe binary names and probe timeout
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Upload  Upload  `toml:"upload"`
	Audio   Audio   `toml:"audio"`
	HLS     HLS     `toml:"hls"`
	Workers Workers `toml:"workers"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/playden/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. When no file exists at the
// resolved path the defaults are used.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the service writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.VideoDir, c.Paths.LogDir, filepath.Dir(c.Paths.DBPath)}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// VideoOutputDir returns the per-video output directory for the given id.
func (c *Config) VideoOutputDir(videoID string) string {
	return filepath.Join(c.Paths.VideoDir, videoID)
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
