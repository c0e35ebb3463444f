// Package task schedules file operations onto a bounded, lazily grown pool of
// execution units. Each unit runs in its own goroutine and talks to the pool
// only through messages, so a slow disk on one task never stalls dispatch or
// the HTTP handlers waiting on other tasks.
package task
