package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/server"
	"github.com/fbz-tec/docvault/core/store"
	"github.com/fbz-tec/docvault/core/uploads"
)

func newTestClient(t *testing.T, maxUpload int64) *Client {
	t.Helper()
	s, err := server.New(store.NewMemoryStore(), uploads.New(t.TempDir(), "http://files.test", maxUpload))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", nil)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "://bad"} {
		_, err := New(u, nil)
		require.Error(t, err, u)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, 0)

	in := documents.Input{
		Title:       "Project Requirements",
		Description: "Requirements for the new intranet project",
		FileURL:     "http://files.test/files/req.pdf",
		FileName:    "requirements.pdf",
		FileSize:    2048576,
		Category:    "Project",
		Tags:        []string{"planning"},
	}

	created, err := c.CreateDocument(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := c.GetDocument(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Project Requirements", got.Title)

	in.Title = "Project Requirements v2"
	updated, err := c.UpdateDocument(ctx, created.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Project Requirements v2", updated.Title)

	listing, err := c.ListDocuments(ctx, documents.ListOptions{Search: "v2", Category: "all", Sort: documents.SortName})
	require.NoError(t, err)
	require.Len(t, listing.Data, 1)
	require.Equal(t, 1, listing.Stats.Total)

	require.NoError(t, c.DeleteDocument(ctx, created.ID))

	_, err = c.GetDocument(ctx, created.ID)
	require.True(t, IsNotFound(err), "got %v", err)
}

func TestAPIErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, 0)

	_, err := c.CreateDocument(ctx, documents.Input{Title: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Fields, "title")
	require.Contains(t, apiErr.Error(), "400")

	_, err = c.ListDocuments(ctx, documents.ListOptions{Sort: "size"})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestAPIErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.GetDocument(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.Equal(t, "bad gateway", apiErr.Message)
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, 0)
	content := bytes.Repeat([]byte("x"), 64*1024)

	var steps []int
	res, err := c.Upload(context.Background(), "scan.png", bytes.NewReader(content), int64(len(content)), func(p int) {
		steps = append(steps, p)
	})
	require.NoError(t, err)
	require.Equal(t, "scan.png", res.Name)
	require.Equal(t, int64(len(content)), res.Size)
	require.Equal(t, "png", res.FileType)
	require.True(t, strings.HasPrefix(res.URL, "http://files.test/files/"))

	require.Equal(t, 0, steps[0])
	require.Equal(t, 100, steps[len(steps)-1])
	for i := 1; i < len(steps); i++ {
		require.Greater(t, steps[i], steps[i-1])
		require.Zero(t, steps[i]%10)
	}
}

func TestUploadUnknownSize(t *testing.T) {
	c := newTestClient(t, 0)

	var steps []int
	res, err := c.Upload(context.Background(), "notes.txt", strings.NewReader(strings.Repeat("n", 4096)), -1, func(p int) {
		steps = append(steps, p)
	})
	require.NoError(t, err)
	require.Equal(t, int64(4096), res.Size)
	require.Equal(t, []int{0, 100}, steps)
}

func TestUploadRejected(t *testing.T) {
	c := newTestClient(t, 16)

	var steps []int
	_, err := c.Upload(context.Background(), "big.pdf", strings.NewReader(strings.Repeat("a", 1024)), 1024, func(p int) {
		steps = append(steps, p)
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusRequestEntityTooLarge, apiErr.Status)
	require.NotContains(t, steps, 100)

	_, err = c.Upload(context.Background(), "virus.exe", strings.NewReader("MZ"), 2, nil)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnsupportedMediaType, apiErr.Status)
}
