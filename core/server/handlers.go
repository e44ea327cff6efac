package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/uploads"
	"github.com/fbz-tec/docvault/internal/logger"
)

// UploadField is the multipart form field carrying the file.
const UploadField = "file"

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := s.docs.List(r.Context(), documents.ListOptions{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var in documents.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.docs.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateDocument(w http.ResponseWriter, r *http.Request) {
	var in documents.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.docs.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.docs.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// upload streams the "file" part of a multipart request into the upload
// directory without buffering it in memory.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxSize()+maxJSONBody)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, badRequest("expected a multipart/form-data body: %v", err))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, badRequest("missing %q field", UploadField))
			return
		}
		if err != nil {
			writeError(w, uploadReadError(err))
			return
		}
		if part.FormName() != UploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		size := int64(-1)
		if v := r.Header.Get("X-File-Size"); v != "" {
			if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				size = n
			}
		}

		res, err := s.uploads.Upload(r.Context(), part.FileName(), part, size, nil)
		part.Close()
		if err != nil {
			writeError(w, uploadReadError(err))
			return
		}

		logger.Debug("Stored upload %q (%d bytes) at %s", res.Name, res.Size, res.FilePath)
		writeJSON(w, http.StatusCreated, res)
		return
	}
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.uploads.Open(r.PathValue("name"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "file not found"})
			return
		}
		writeError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "file not found"})
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

type healthBody struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	State   string `json:"state"`
	Error   string `json:"error,omitempty"`
}

// health reports whether the shared connection is established or can be
// established now.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok", Backend: s.store.Backend()}
	status := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		body.Status = "unavailable"
		body.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	body.State = s.store.State().String()
	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return &requestError{status: http.StatusUnsupportedMediaType, msg: "Content-Type must be application/json"}
		}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &requestError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"}
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func uploadReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body exceeds %d bytes", uploads.ErrTooLarge, maxErr.Limit)
	}
	return err
}
