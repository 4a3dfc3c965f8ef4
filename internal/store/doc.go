// Package store persists video records and their extracted audio tracks in
// SQLite and enforces the embedded schema version at startup.
package store
