package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/uploads"
	"github.com/fbz-tec/docvault/internal/logger"
)

// DefaultTimeout applies to every request except uploads.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to a docvault API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API at baseURL, e.g. http://localhost:8080.
// A nil httpClient selects one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(u.String(), "/"), http: httpClient}, nil
}

// ListDocuments returns the documents matching opts and stats over the whole catalog.
func (c *Client) ListDocuments(ctx context.Context, opts documents.ListOptions) (documents.Listing, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}

	path := "/api/documents"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var listing documents.Listing
	err := c.doJSON(ctx, http.MethodGet, path, nil, &listing)
	return listing, err
}

func (c *Client) GetDocument(ctx context.Context, id string) (documents.Document, error) {
	var doc documents.Document
	err := c.doJSON(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, &doc)
	return doc, err
}

func (c *Client) CreateDocument(ctx context.Context, in documents.Input) (documents.Document, error) {
	var doc documents.Document
	err := c.doJSON(ctx, http.MethodPost, "/api/documents", in, &doc)
	return doc, err
}

func (c *Client) UpdateDocument(ctx context.Context, id string, in documents.Input) (documents.Document, error) {
	var doc documents.Document
	err := c.doJSON(ctx, http.MethodPut, "/api/documents/"+url.PathEscape(id), in, &doc)
	return doc, err
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(id), nil, nil)
}

// Upload sends r as a multipart file named name. size is used for progress
// reporting and may be -1 when unknown. progress receives 0, 10, ... 100.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, size int64, progress uploads.ProgressFunc) (uploads.Result, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	counter := &countingReader{r: r, size: size, report: progress, last: -1}
	counter.emit(0)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, counter)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/uploads", pr)
	if err != nil {
		pr.Close()
		return uploads.Result{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if size >= 0 {
		req.Header.Set("X-File-Size", strconv.FormatInt(size, 10))
	}

	// Uploads can outlast the default timeout; ctx bounds them instead.
	hc := *c.http
	hc.Timeout = 0

	logger.Debug("Uploading %s (%d bytes) to %s", name, size, req.URL)
	resp, err := hc.Do(req)
	if err != nil {
		pr.Close()
		return uploads.Result{}, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	var res uploads.Result
	if err := decodeResponse(resp, &res); err != nil {
		return uploads.Result{}, err
	}
	counter.emit(100)
	return res, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("%s %s", method, req.URL)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			apiErr.Message = body.Error
			apiErr.Fields = body.Fields
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// countingReader reports how much of size has been read in 10% steps.
type countingReader struct {
	r      io.Reader
	size   int64
	read   int64
	report uploads.ProgressFunc
	last   int
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.read += int64(n)
	if c.size > 0 {
		pct := int(c.read * 100 / c.size)
		// 100 waits for the server's answer.
		if pct > 90 {
			pct = 90
		}
		c.emit(pct / 10 * 10)
	}
	return n, err
}

func (c *countingReader) emit(pct int) {
	if c.report == nil || pct <= c.last {
		return
	}
	if c.size <= 0 {
		// Without a size only the start and the end are known.
		c.report(pct)
		c.last = pct
		return
	}
	for step := c.last + 1; step <= pct; step++ {
		if step%10 == 0 {
			c.report(step)
		}
	}
	c.last = pct
}
