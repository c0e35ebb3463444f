// Package api handles incoming HTTP requests, request validation, and
// response formatting. It acts as an adapter between external clients and the
// file service, translating HTTP concerns to pool operations.
package api
