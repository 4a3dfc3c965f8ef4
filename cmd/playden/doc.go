// Command playden is the service binary and its control CLI: serve runs the
// daemon, the remaining commands talk to a running daemon over its HTTP API.
package main
