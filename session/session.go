// Package session provides the server-side session layer: a pluggable
// store addressed by an opaque id, a signed cookie codec that carries
// that id to the browser, and a manager that owns TTL policy. The login
// middleware is the only writer of session identity state.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when the id resolves to nothing,
// including sessions that have expired.
var ErrNotFound = errors.New("session not found")

// Record is the small typed value a session stores. UserID is the
// identity reference; Values holds short-lived strings such as flash
// messages. Mutations are tracked so unchanged sessions are not
// rewritten on every request.
type Record struct {
	ID        string
	UserID    *int64
	Values    map[string]string
	ExpiresAt time.Time

	dirty bool
}

// Set stores a value and marks the record dirty.
func (r *Record) Set(key, value string) {
	if r.Values == nil {
		r.Values = map[string]string{}
	}
	r.Values[key] = value
	r.dirty = true
}

// Pop removes and returns a value, marking the record dirty when the
// key existed. Used for flash-style one-shot values.
func (r *Record) Pop(key string) (string, bool) {
	if r.Values == nil {
		return "", false
	}
	value, ok := r.Values[key]
	if ok {
		delete(r.Values, key)
		r.dirty = true
	}
	return value, ok
}

// Value returns a stored value without consuming it.
func (r *Record) Value(key string) (string, bool) {
	if r.Values == nil {
		return "", false
	}
	value, ok := r.Values[key]
	return value, ok
}

// Dirty reports whether Set or Pop touched the record.
func (r *Record) Dirty() bool {
	return r.dirty
}

// Store is the persistence contract for sessions. Implementations must
// treat expired records as absent.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Remove(ctx context.Context, id string) error
	Renew(ctx context.Context, id string, expiresAt time.Time) error
}
