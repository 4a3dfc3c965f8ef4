package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"playden/internal/config"
)

// apiClient talks to a running daemon over its HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(configPath string) (*apiClient, error) {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &apiClient{
		base: "http://" + cfg.Paths.Bind,
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s for %s", resp.Status, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type statusPayload struct {
	Success    bool `json:"success"`
	ActiveJobs int  `json:"active_jobs"`
	QueuedJobs int  `json:"queued_jobs"`
	Stats      struct {
		Total      int `json:"Total"`
		Pending    int `json:"Pending"`
		Processing int `json:"Processing"`
		Ready      int `json:"Ready"`
		Failed     int `json:"Failed"`
	} `json:"stats"`
}

type videosPayload struct {
	Success bool `json:"success"`
	Videos  []struct {
		ID               string  `json:"id"`
		OriginalFilename string  `json:"original_filename"`
		Status           string  `json:"status"`
		Progress         int     `json:"progress"`
		Duration         float64 `json:"duration"`
		Width            int     `json:"width"`
		Height           int     `json:"height"`
		FileSize         int64   `json:"file_size"`
		ErrorMessage     string  `json:"error_message"`
		WatchCount       int     `json:"watch_count"`
		AudioTrackCount  int     `json:"audio_track_count"`
	} `json:"videos"`
}
