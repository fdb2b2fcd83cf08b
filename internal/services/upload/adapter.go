// Package upload persists payment-slip evidence on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotImage = errors.New("file must be a JPEG or PNG image")
	ErrTooLarge = errors.New("file exceeds the size limit")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Adapter stores uploaded images under timestamped, uuid-suffixed names and
// returns that name as the durable reference.
type Adapter struct {
	dir      string
	maxBytes int64
}

func NewAdapter(dir string, maxBytes int64) (*Adapter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Adapter{
		dir:      dir,
		maxBytes: maxBytes,
	}, nil
}

// Dir returns the storage directory, for static file serving.
func (a *Adapter) Dir() string {
	return a.dir
}

// Save validates and persists an image, returning the stored filename. The
// content type is sniffed from the payload, not trusted from the header.
func (a *Adapter) Save(size int64, r io.Reader) (string, error) {
	if size <= 0 {
		return "", ErrNotImage
	}
	if size > a.maxBytes {
		return "", ErrTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrNotImage
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), strings.Split(uuid.NewString(), "-")[0], ext)
	path := filepath.Join(a.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create slip file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(head); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write slip file: %w", err)
	}
	// maxBytes+1 so an undersized Content-Length cannot smuggle extra data.
	written, err := io.Copy(f, io.LimitReader(r, a.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write slip file: %w", err)
	}
	if int64(len(head))+written > a.maxBytes {
		os.Remove(path)
		return "", ErrTooLarge
	}

	return name, nil
}

// Remove deletes a stored file. Best effort: a leftover file is logged, not
// surfaced.
func (a *Adapter) Remove(name string) {
	if name == "" {
		return
	}
	path := filepath.Join(a.dir, filepath.Base(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("upload: failed to remove %s: %v", name, err)
	}
}
