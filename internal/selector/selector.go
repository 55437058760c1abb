// Package selector implements the single-file PDF filter that sits in front of
// the upload controller.
package selector

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Selection constants. These are compile-time and not runtime-configurable.
const (
	AcceptedType  = "application/pdf"
	AcceptedExt   = ".pdf"
	MaxSizeBytes  = 10 * 1024 * 1024 // 10MB
	AllowMultiple = false
)

// RejectionKind classifies why a candidate was refused.
type RejectionKind string

const (
	KindFileTooLarge  RejectionKind = "file-too-large"
	KindInvalidFormat RejectionKind = "invalid-format"
	KindTooManyFiles  RejectionKind = "too-many-files"
	KindNoFile        RejectionKind = "no-file"
	KindDisabled      RejectionKind = "disabled"
)

// Rejection is returned by Select when no file is emitted.
type Rejection struct {
	Kind     RejectionKind
	FileName string
	Size     int64
}

func (r *Rejection) Error() string {
	if r.FileName == "" {
		return fmt.Sprintf("selection rejected: %s", r.Kind)
	}
	return fmt.Sprintf("selection rejected: %s (%s, %d bytes)", r.Kind, r.FileName, r.Size)
}

// Message returns the inline text shown next to the drop target.
// A disabled selector renders nothing.
func (r *Rejection) Message() string {
	switch r.Kind {
	case KindDisabled:
		return ""
	case KindFileTooLarge:
		return "FILE TOO LARGE (>10MB)"
	default:
		return "INVALID FILE FORMAT"
	}
}

// AsRejection unwraps a *Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// File is a selected file: a display name, a byte size and an opaque handle.
type File struct {
	Name        string
	Size        int64
	ContentType string

	open    func() (io.ReadCloser, error)
	release func() error
}

// NewFile wraps an opener and an optional release func into a File.
func NewFile(name, contentType string, size int64, open func() (io.ReadCloser, error), release func() error) File {
	return File{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		open:        open,
		release:     release,
	}
}

// Open returns a reader over the file contents.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}
	return f.open()
}

// Release frees whatever backs the handle. Safe to call on a zero File.
func (f File) Release() error {
	if f.release == nil {
		return nil
	}
	return f.release()
}

// IsZero reports whether f is the empty selection.
func (f File) IsZero() bool {
	return f.Name == "" && f.open == nil
}

// Select filters candidates and emits exactly one accepted file.
// No file is emitted while disabled.
func Select(candidates []File, disabled bool) (File, error) {
	if disabled {
		return File{}, &Rejection{Kind: KindDisabled}
	}
	if len(candidates) == 0 {
		return File{}, &Rejection{Kind: KindNoFile}
	}
	if len(candidates) > 1 && !AllowMultiple {
		return File{}, &Rejection{Kind: KindTooManyFiles, FileName: candidates[0].Name, Size: candidates[0].Size}
	}

	f := candidates[0]
	if !IsAcceptedType(f.Name, f.ContentType) {
		return File{}, &Rejection{Kind: KindInvalidFormat, FileName: f.Name, Size: f.Size}
	}
	if f.Size > MaxSizeBytes {
		return File{}, &Rejection{Kind: KindFileTooLarge, FileName: f.Name, Size: f.Size}
	}
	return f, nil
}

// IsAcceptedType matches either the declared MIME type or the file extension.
func IsAcceptedType(name, contentType string) bool {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && mediaType == AcceptedType {
			return true
		}
	}
	return strings.EqualFold(filepath.Ext(name), AcceptedExt)
}

// FromPath builds a candidate from a file on disk. The content type is taken
// from the extension, or sniffed from the first bytes when there is none.
func FromPath(path string) (File, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType, err = sniff(path)
		if err != nil {
			return File{}, err
		}
	}

	open := func() (io.ReadCloser, error) {
		return os.Open(path)
	}
	return NewFile(filepath.Base(path), contentType, stat.Size(), open, nil), nil
}

// FromHeader builds a candidate from a multipart form file.
func FromHeader(fh *multipart.FileHeader) File {
	open := func() (io.ReadCloser, error) {
		return fh.Open()
	}
	return NewFile(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, open, nil)
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return http.DetectContentType(buf[:n]), nil
}
