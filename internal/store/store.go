// Package store persists sessions as one JSON document per session id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"lg/protein-plate-api/internal/session"
)

var ErrNotFound = errors.New("session not found")

// Store loads and saves sessions. Loaded sessions come back bound to the
// store's session.Options.
type Store interface {
	Load(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
	Create(ctx context.Context) (*session.Session, error)
	// ResetConsumedProtein zeroes consumed protein on every stored session
	// and reports how many changed.
	ResetConsumedProtein(ctx context.Context) (int64, error)
}

// decode turns a stored document back into a session. A document written
// under another schema version is dropped in favour of a fresh session with
// the same id.
func decode(id uuid.UUID, version int, data []byte, opts session.Options) (*session.Session, error) {
	if version != session.SchemaVersion {
		log.Printf("[store] discarding session %s: schema version %d, want %d", id, version, session.SchemaVersion)
		return session.New(id, opts), nil
	}
	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	s.ID = id
	s.Bind(opts)
	return &s, nil
}

func encode(s *session.Session) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return b, nil
}
