// Package hls owns the file layout of a per-video HLS bundle and assembles
// the master playlist. Playlist generation is pure text; no external tool is
// involved.
package hls
