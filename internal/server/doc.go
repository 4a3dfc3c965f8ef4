// Package server exposes the HTTP API: upload intake with validation and
// probing, video listing and status polling, playback bookkeeping, and HLS
// file serving.
package server
