package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fbz-tec/docvault/internal/logger"
)

// DefaultCacheSize is the number of documents kept by the read cache.
const DefaultCacheSize = 256

// Listing is the result of Service.List: the matching documents and the
// stats of the whole collection.
type Listing struct {
	Data  []Document `json:"data"`
	Stats Stats      `json:"stats"`
}

// Service applies validation and timestamps on top of a Repository and
// keeps recently read documents in an LRU cache.
type Service struct {
	repo  Repository
	cache *lru.Cache[string, Document]
	now   func() time.Time
}

// NewService wraps repo. cacheSize <= 0 selects DefaultCacheSize.
func NewService(repo Repository, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, Document](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return &Service{
		repo:  repo,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create validates in and stores a new document.
func (s *Service) Create(ctx context.Context, in Input) (Document, error) {
	in, err := in.Validate()
	if err != nil {
		return Document{}, err
	}

	now := s.now()
	doc := in.apply(Document{CreatedAt: now, UpdatedAt: now})

	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}

	logger.Debug("Document created: id=%s title=%q", created.ID, created.Title)
	s.cache.Add(created.ID, created)
	return created, nil
}

// Get returns the document with id, from cache when possible.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Document{}, ErrNotFound
	}
	if doc, ok := s.cache.Get(id); ok {
		return doc, nil
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	s.cache.Add(id, doc)
	return doc, nil
}

// List returns the documents matching opts plus stats over the whole collection.
func (s *Service) List(ctx context.Context, opts ListOptions) (Listing, error) {
	order, err := ParseSort(opts.Sort)
	if err != nil {
		return Listing{}, &ValidationError{Fields: map[string]string{"sort": err.Error()}}
	}
	opts.Sort = order

	docs, err := s.repo.List(ctx, opts)
	if err != nil {
		return Listing{}, fmt.Errorf("list documents: %w", err)
	}

	all := docs
	if opts.Filtered() {
		all, err = s.repo.List(ctx, ListOptions{Sort: order})
		if err != nil {
			return Listing{}, fmt.Errorf("list documents: %w", err)
		}
	}

	if docs == nil {
		docs = []Document{}
	}
	return Listing{Data: docs, Stats: Summarize(all)}, nil
}

// Update replaces the editable fields of the document with id.
// CreatedAt is preserved; UpdatedAt is refreshed.
func (s *Service) Update(ctx context.Context, id string, in Input) (Document, error) {
	in, err := in.Validate()
	if err != nil {
		return Document{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		s.cache.Remove(id)
		return Document{}, err
	}

	doc := in.apply(existing)
	doc.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, doc)
	s.cache.Remove(id)
	if err != nil {
		return Document{}, err
	}

	logger.Debug("Document updated: id=%s", updated.ID)
	s.cache.Add(id, updated)
	return updated, nil
}

// Delete removes the document with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Debug("Document deleted: id=%s", id)
	return nil
}
