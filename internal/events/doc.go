// Package events provides typed lifecycle events for the task pool.
//
// The pool publishes an event for every task transition it performs. Handlers
// register with an emitter, optionally restricted to a set of event kinds, and
// receive events without the pool knowing who is listening.
//
// The primary components are:
// - TaskEvent: a task-started, task-completed or task-failed notification
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
package events
