package documents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRepo is a minimal Repository that counts Get calls.
type fakeRepo struct {
	mu     sync.Mutex
	docs   map[string]Document
	nextID int
	gets   int
	lists  []ListOptions
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: map[string]Document{}}
}

func (r *fakeRepo) Create(_ context.Context, doc Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	doc.ID = fmt.Sprintf("doc-%d", r.nextID)
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *fakeRepo) List(_ context.Context, opts ListOptions) ([]Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, opts)
	all := make([]Document, 0, len(r.docs))
	for _, d := range r.docs {
		all = append(all, d)
	}
	return Apply(all, opts), nil
}

func (r *fakeRepo) Update(_ context.Context, doc Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return Document{}, ErrNotFound
	}
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func validInput(title string) Input {
	return Input{
		Title:       title,
		Description: "A description long enough",
		FileURL:     "http://localhost:8080/files/" + title + ".pdf",
		FileName:    title + ".pdf",
		FileSize:    100,
		Category:    "Project",
	}
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewService(repo, 8)
	require.NoError(t, err)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, repo
}

func TestServiceCreateAndGetUsesCache(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("alpha"))
	require.NoError(t, err)
	require.Equal(t, "doc-1", created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.Equal(t, created.CreatedAt, created.UpdatedAt)
	require.Equal(t, "pdf", created.FileType)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
	require.Equal(t, 0, repo.gets, "Get should be served from cache after Create")
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), Input{Title: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, repo.docs)
}

func TestServiceUpdatePreservesCreatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("alpha"))
	require.NoError(t, err)

	in := validInput("alpha v2")
	in.Tags = []string{"Final"}
	updated, err := svc.Update(ctx, created.ID, in)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	require.Equal(t, []string{"final"}, updated.Tags)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alpha v2", got.Title)
}

func TestServiceUpdateUnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", validInput("alpha"))
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestServiceDeleteInvalidatesCache(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("alpha"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestServiceListStatsCoverWholeCollection(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput("alpha"))
	require.NoError(t, err)
	other := validInput("beta")
	other.Category = "Legal"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	listing, err := svc.List(ctx, ListOptions{Category: "Legal"})
	require.NoError(t, err)
	require.Len(t, listing.Data, 1)
	require.Equal(t, "beta", listing.Data[0].Title)
	require.Equal(t, 2, listing.Stats.Total)
	require.Equal(t, int64(200), listing.Stats.TotalSize)
	require.Len(t, repo.lists, 2)

	repo.lists = nil
	listing, err = svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, listing.Data, 2)
	require.Equal(t, "beta", listing.Data[0].Title, "newest first")
	require.Len(t, repo.lists, 1, "unfiltered listing needs a single query")
}

func TestServiceListRejectsUnknownSort(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.List(context.Background(), ListOptions{Sort: "size"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "sort")
}

func TestServiceListEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	listing, err := svc.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.NotNil(t, listing.Data)
	require.Empty(t, listing.Data)
}
