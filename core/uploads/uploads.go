package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/fbz-tec/docvault/core/config"
	"github.com/fbz-tec/docvault/internal/logger"
)

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")
)

// AllowedExtensions lists the file types accepted for upload.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".jpg", ".jpeg", ".png"}

// Result describes a stored upload.
type Result struct {
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	FileType string `json:"fileType"`
}

// ProgressFunc receives the upload progress as a percentage in steps of 10.
type ProgressFunc func(percent int)

// Uploader stores files on local disk and serves them under PublicURL/files/.
type Uploader struct {
	dir       string
	publicURL string
	maxSize   int64
}

// New returns an Uploader writing into dir. maxSize <= 0 selects
// config.DefaultMaxUploadSize.
func New(dir, publicURL string, maxSize int64) *Uploader {
	if maxSize <= 0 {
		maxSize = config.DefaultMaxUploadSize
	}
	return &Uploader{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxSize:   maxSize,
	}
}

// FromConfig builds an Uploader from the UPLOAD_DIR, PUBLIC_URL and
// MAX_UPLOAD_SIZE settings.
func FromConfig(cfg config.Config) *Uploader {
	return New(cfg.UploadDir, cfg.PublicURL, cfg.MaxUploadSize)
}

func (u *Uploader) Dir() string { return u.dir }

func (u *Uploader) MaxSize() int64 { return u.maxSize }

// CheckType returns the file type of name (extension without the dot) or
// ErrUnsupportedType.
func CheckType(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return strings.TrimPrefix(ext, "."), nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedType, ext, strings.Join(AllowedExtensions, ", "))
}

// Upload copies r into the upload directory under a collision-free name.
// size is the expected length; pass -1 when unknown. The file only appears
// once it has been written completely.
func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader, size int64, progress ProgressFunc) (Result, error) {
	name = filepath.Base(strings.TrimSpace(name))
	fileType, err := CheckType(name)
	if err != nil {
		return Result{}, err
	}
	if size > u.maxSize {
		return Result{}, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, size, u.maxSize)
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create upload directory: %w", err)
	}

	stored := storedName(name)
	path := filepath.Join(u.dir, stored)

	pr := &progressReader{ctx: ctx, r: r, size: size, limit: u.maxSize, report: progress, last: -1}
	pr.emit(0)

	logger.Debug("Writing upload %q to %s", name, path)
	if err := atomic.WriteFile(path, pr); err != nil {
		switch {
		case pr.tooLarge:
			return Result{}, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, u.maxSize)
		case pr.ctxErr != nil:
			return Result{}, pr.ctxErr
		}
		return Result{}, fmt.Errorf("store upload: %w", err)
	}

	if pr.read == 0 {
		_ = os.Remove(path)
		return Result{}, ErrEmptyFile
	}
	pr.emit(100)

	return Result{
		FilePath: path,
		URL:      u.publicURL + "/files/" + stored,
		Name:     name,
		Size:     pr.read,
		FileType: fileType,
	}, nil
}

// Open returns the stored file called name. Names that would escape the
// upload directory are rejected with os.ErrNotExist.
func (u *Uploader) Open(name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(u.dir, name))
}

// storedName prefixes a random token so two uploads never share a name.
func storedName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return uuid.NewString()[:8] + "_" + b.String()
}

// progressReader counts bytes, enforces the size limit and reports progress
// each time another 10% has been read.
type progressReader struct {
	ctx    context.Context
	r      io.Reader
	size   int64
	limit  int64
	read   int64
	report ProgressFunc
	last   int

	tooLarge bool
	ctxErr   error
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		p.ctxErr = err
		return 0, err
	}

	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.read > p.limit {
		p.tooLarge = true
		return n, ErrTooLarge
	}

	if p.size > 0 {
		pct := int(p.read * 100 / p.size)
		if pct > 100 {
			pct = 100
		}
		// 100 is reported once the file is safely on disk.
		if step := pct / 10 * 10; step < 100 {
			p.emit(step)
		}
	}
	return n, err
}

func (p *progressReader) emit(pct int) {
	if p.report == nil || pct <= p.last {
		return
	}
	if p.size <= 0 {
		// Without a size only the start and the end are known.
		p.report(pct)
		p.last = pct
		return
	}
	for step := p.last + 1; step <= pct; step++ {
		if step%10 == 0 {
			p.report(step)
		}
	}
	p.last = pct
}
