package documents

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no document has the requested ID.
var ErrNotFound = errors.New("document not found")

// Document is a stored file together with its catalog metadata.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"fileUrl"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	FileType    string    `json:"fileType"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input is the payload accepted for create and update.
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FileURL     string   `json:"fileUrl"`
	FileName    string   `json:"fileName"`
	FileSize    int64    `json:"fileSize"`
	FileType    string   `json:"fileType"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// Repository persists documents. Implementations live in core/store.
//
// Create assigns the ID when doc.ID is empty. Update and Delete return
// ErrNotFound for unknown IDs. List honours opts (search, category, sort).
type Repository interface {
	Create(ctx context.Context, doc Document) (Document, error)
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, opts ListOptions) ([]Document, error)
	Update(ctx context.Context, doc Document) (Document, error)
	Delete(ctx context.Context, id string) error
}

// apply copies the input fields onto d.
func (in Input) apply(d Document) Document {
	d.Title = in.Title
	d.Description = in.Description
	d.FileURL = in.FileURL
	d.FileName = in.FileName
	d.FileSize = in.FileSize
	d.FileType = in.FileType
	d.Category = in.Category
	d.Tags = append([]string(nil), in.Tags...)
	return d
}
