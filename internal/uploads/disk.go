package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL prefix under which the disk store's files are served.
const PublicPrefix = "/uploads/"

// DiskStore writes uploads into a local directory.
type DiskStore struct {
	dir     string
	maxSize int64
}

// NewDiskStore creates dir if needed and returns a store writing into it.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, maxSize: maxSize}, nil
}

// Dir is the directory files are written to.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(_ context.Context, kind Kind, fh *multipart.FileHeader) (*File, error) {
	if err := Check(kind, fh, s.maxSize); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := GenerateName(fh.Filename)
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return nil, err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return nil, err
	}

	return &File{Path: PublicPrefix + name, Name: fh.Filename}, nil
}

// Remove deletes the file behind a reference returned by Save. Removing a
// file that is already gone is not an error.
func (s *DiskStore) Remove(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return fmt.Errorf("not a disk upload reference: %q", ref)
	}
	name := path.Base(ref)
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
