package config

const (
	defaultVideoDir            = "~/.local/share/playden/videos"
	defaultLogDir              = "~/.local/share/playden/logs"
	defaultDBPath              = "~/.local/share/playden/playden.db"
	defaultBind                = "127.0.0.1:8000"
	defaultMaxUploadBytes      = int64(10) << 30
	defaultAudioCodec          = "aac"
	defaultAudioBitrate        = "128k"
	defaultAudioChannels       = 2
	defaultAudioSampleRate     = 48000
	defaultHLSSegmentSeconds   = 6
	defaultWorkerCount         = 2
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultProbeTimeoutSeconds = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideoDir: defaultVideoDir,
			LogDir:   defaultLogDir,
			DBPath:   defaultDBPath,
			Bind:     defaultBind,
		},
		Upload: Upload{
			MaxUploadBytes: defaultMaxUploadBytes,
		},
		Audio: Audio{
			Codec:      defaultAudioCodec,
			Bitrate:    defaultAudioBitrate,
			Channels:   defaultAudioChannels,
			SampleRate: defaultAudioSampleRate,
		},
		HLS: HLS{
			SegmentSeconds: defaultHLSSegmentSeconds,
		},
		Workers: Workers{
			Count: defaultWorkerCount,
		},
		Tools: Tools{
			FFmpeg:              defaultFFmpegBinary,
			FFprobe:             defaultFFprobeBinary,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
