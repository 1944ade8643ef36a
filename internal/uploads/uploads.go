package uploads

import (
	"context"
	"encoding/hex"
	"errors"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Kind is the form field an upload arrived in; it decides the allowed file types.
type Kind string

const (
	KindImage      Kind = "image"
	KindAvatar     Kind = "avatar"
	KindAttachment Kind = "attachment"
)

var (
	ErrFileType     = errors.New("file type not allowed")
	ErrFileTooLarge = errors.New("file too large")
)

var allowedExtensions = map[Kind][]string{
	KindImage:      {".jpg", ".jpeg", ".png", ".gif"},
	KindAvatar:     {".jpg", ".jpeg", ".png", ".gif"},
	KindAttachment: {".pdf", ".doc", ".docx", ".txt", ".zip", ".rar"},
}

// File is a stored upload. Path is the public reference persisted on the
// topic or user; Name is the original client filename.
type File struct {
	Path string
	Name string
}

// Store persists uploaded files and removes them again on request failure.
type Store interface {
	Save(ctx context.Context, kind Kind, fh *multipart.FileHeader) (*File, error)
	Remove(ctx context.Context, path string) error
}

// Check enforces the extension and size rules for kind.
func Check(kind Kind, fh *multipart.FileHeader, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slices.Contains(allowedExtensions[kind], ext) {
		return ErrFileType
	}
	if maxSize > 0 && fh.Size > maxSize {
		return ErrFileTooLarge
	}
	return nil
}

// GenerateName turns a client filename into a safe unique one: the base name
// lower-cased with every rune outside [a-z0-9] replaced by '-', cut to 40
// characters, then '-', 16 random hex digits and the original extension.
func GenerateName(original string) string {
	original = filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := filepath.Ext(original)
	base := strings.ToLower(strings.TrimSuffix(original, ext))

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
		if b.Len() == 40 {
			break
		}
	}

	id := uuid.New()
	return b.String() + "-" + hex.EncodeToString(id[:8]) + sanitizeExt(ext)
}

// sanitizeExt keeps the extension but drops anything that could escape the
// upload directory or break a URL.
func sanitizeExt(ext string) string {
	var b strings.Builder
	for i, r := range ext {
		if i == 0 && r == '.' {
			b.WriteRune(r)
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() <= 1 {
		return ""
	}
	return b.String()
}
