// Package pipeline runs the transcoding job queue: a fixed worker pool
// draining an unbounded FIFO, where each job walks one video through
// rendition extraction, playlist generation, and thumbnail capture while
// reporting progress through the store.
package pipeline
