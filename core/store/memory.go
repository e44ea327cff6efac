package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fbz-tec/docvault/core/db"
	"github.com/fbz-tec/docvault/core/documents"
)

// memoryDB is the handle of the in-process backend.
type memoryDB struct {
	mu   sync.RWMutex
	docs map[string]documents.Document
}

// MemoryStore keeps documents in process memory. Closing it drops them.
type MemoryStore struct {
	cached[*memoryDB]
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore(opts ...db.Option) *MemoryStore {
	connect := db.ConnectorFunc[*memoryDB](func(context.Context, string) (*memoryDB, error) {
		return &memoryDB{docs: make(map[string]documents.Document)}, nil
	})
	opts = append([]db.Option{db.WithBackend(db.BackendMemory)}, opts...)
	return &MemoryStore{cached[*memoryDB]{cache: db.NewCache[*memoryDB]("memory://", connect, opts...)}}
}

func (s *MemoryStore) Create(ctx context.Context, doc documents.Document) (documents.Document, error) {
	m, err := s.cache.Get(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Tags = cloneTags(doc.Tags)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return doc, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (documents.Document, error) {
	m, err := s.cache.Get(ctx)
	if err != nil {
		return documents.Document{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return documents.Document{}, documents.ErrNotFound
	}
	doc.Tags = cloneTags(doc.Tags)
	return doc, nil
}

func (s *MemoryStore) List(ctx context.Context, opts documents.ListOptions) ([]documents.Document, error) {
	m, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	all := make([]documents.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		doc.Tags = cloneTags(doc.Tags)
		all = append(all, doc)
	}
	m.mu.RUnlock()

	return documents.Apply(all, opts), nil
}

func (s *MemoryStore) Update(ctx context.Context, doc documents.Document) (documents.Document, error) {
	m, err := s.cache.Get(ctx)
	if err != nil {
		return documents.Document{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; !ok {
		return documents.Document{}, documents.ErrNotFound
	}
	doc.Tags = cloneTags(doc.Tags)
	m.docs[doc.ID] = doc
	return doc, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	m, err := s.cache.Get(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return documents.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
