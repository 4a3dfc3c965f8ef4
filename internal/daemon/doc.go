// Package daemon runs the long-lived service process: single-instance
// locking, startup recovery of interrupted jobs, and lifecycle management
// for the worker pool and HTTP server.
package daemon
