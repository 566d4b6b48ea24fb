// Package chat_store is the append-only per-session turn log. Turns are
// immutable once appended and always returned oldest-first; no update or
// delete operation exists.
package chat_store

import (
	"context"

	"github.com/serisow/ragone/ragtype"
)

type Store interface {
	// Append adds one turn to the end of the session's log, creating the
	// session implicitly on first use. Callers serialize appends per session
	// id so the log reflects real chronological order.
	Append(ctx context.Context, sessionID string, turn ragtype.Turn) error

	// History returns the session's turns oldest-first. An unknown session
	// yields an empty slice, not an error.
	History(ctx context.Context, sessionID string) ([]ragtype.Turn, error)
}
