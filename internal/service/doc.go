// Package service contains the coordinating layer between request handlers
// and the task pool.
//
// FileService translates named file operations (read, write, copy, process and
// their batch form) into pool submissions, validates payloads before they
// reach the pool, waits on outcomes, and wires the pool's lifecycle events to
// a logging sink.
//
// Dependencies are injected through constructors; handlers receive the
// service instance from the application wiring in cmd/server rather than
// from a package-level singleton.
package service
