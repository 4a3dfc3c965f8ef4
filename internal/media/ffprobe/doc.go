// Package ffprobe wraps the external ffprobe binary and normalizes its JSON
// output into the metadata record the rest of the system consumes.
//
// Inspect returns the raw parsed structure; Info flattens it to container
// duration, first-video-stream geometry, and audio tracks indexed in
// discovery order with language and title defaults applied. Sources without
// video or audio streams are represented by empty values rather than errors
// so callers decide acceptability.
package ffprobe
