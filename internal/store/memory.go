package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"lg/protein-plate-api/internal/session"
)

type memoryDoc struct {
	version int
	state   []byte
}

// Memory keeps encoded sessions in a map. Used when no database is
// configured and in tests.
type Memory struct {
	mu   sync.Mutex
	docs map[uuid.UUID]memoryDoc
	opts session.Options
}

func NewMemory(opts session.Options) *Memory {
	return &Memory{docs: make(map[uuid.UUID]memoryDoc), opts: opts}
}

func (m *Memory) Load(_ context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.Lock()
	doc, ok := m.docs[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(id, doc.version, doc.state, m.opts)
}

func (m *Memory) Save(_ context.Context, s *session.Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[s.ID] = memoryDoc{version: s.Version, state: b}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Create(ctx context.Context) (*session.Session, error) {
	s := session.New(uuid.New(), m.opts)
	if err := m.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Memory) ResetConsumedProtein(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, doc := range m.docs {
		s, err := decode(id, doc.version, doc.state, m.opts)
		if err != nil {
			return n, err
		}
		if s.ConsumedProtein == 0 {
			continue
		}
		s.ResetConsumedProtein()
		b, err := encode(s)
		if err != nil {
			return n, err
		}
		m.docs[id] = memoryDoc{version: s.Version, state: b}
		n++
	}
	return n, nil
}
