package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playden_uploads_total",
			Help: "Total number of upload attempts",
		},
		[]string{"result"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playden_upload_bytes_total",
			Help: "Total bytes accepted from uploads",
		},
	)
)

// Pipeline metrics
var (
	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playden_jobs_completed_total",
			Help: "Total number of transcoding jobs by terminal status",
		},
		[]string{"status"},
	)

	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playden_active_jobs",
			Help: "Number of transcoding jobs currently running",
		},
	)

	QueuedJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playden_queued_jobs",
			Help: "Number of jobs waiting for a worker",
		},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playden_job_duration_seconds",
			Help:    "End-to-end transcoding job duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	AudioTracksExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playden_audio_tracks_extracted_total",
			Help: "Total audio track extraction attempts",
		},
		[]string{"result"},
	)
)

// Playback metrics
var (
	WatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playden_watch_total",
			Help: "Total number of recorded playback starts",
		},
	)
)
