package uploads

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File[field][0]
}

func TestGenerateName(t *testing.T) {
	tests := []struct {
		original string
		pattern  string
	}{
		{"Cat Photo.PNG", `^cat-photo-[0-9a-f]{16}\.PNG$`},
		{"report.v2.pdf", `^report-v2-[0-9a-f]{16}\.pdf$`},
		{"Кот.jpg", `^----[0-9a-f]{16}\.jpg$`},
		{"../../etc/passwd.txt", `^passwd-[0-9a-f]{16}\.txt$`},
		{`C:\Users\me\notes.txt`, `^notes-[0-9a-f]{16}\.txt$`},
		{strings.Repeat("a", 60) + ".gif", `^a{40}-[0-9a-f]{16}\.gif$`},
	}
	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.pattern), GenerateName(tt.original))
		})
	}

	assert.NotEqual(t, GenerateName("a.png"), GenerateName("a.png"))
}

func TestCheck(t *testing.T) {
	img := fileHeader(t, "image", "cat.JPG", []byte("jpeg"))
	doc := fileHeader(t, "attachment", "notes.docx", []byte("doc"))
	exe := fileHeader(t, "attachment", "setup.exe", []byte("MZ"))

	assert.NoError(t, Check(KindImage, img, 1024))
	assert.NoError(t, Check(KindAvatar, img, 1024))
	assert.ErrorIs(t, Check(KindAttachment, img, 1024), ErrFileType)
	assert.NoError(t, Check(KindAttachment, doc, 1024))
	assert.ErrorIs(t, Check(KindImage, doc, 1024), ErrFileType)
	assert.ErrorIs(t, Check(KindAttachment, exe, 1024), ErrFileType)
	assert.ErrorIs(t, Check(KindImage, img, 2), ErrFileTooLarge)
}

func TestDiskStoreSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, 1<<20)
	require.NoError(t, err)
	ctx := context.Background()

	file, err := store.Save(ctx, KindAttachment, fileHeader(t, "attachment", "My Notes.txt", []byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, "My Notes.txt", file.Name)
	assert.True(t, strings.HasPrefix(file.Path, "/uploads/my-notes-"))

	onDisk := filepath.Join(dir, filepath.Base(file.Path))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(ctx, file.Path))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(ctx, file.Path))
	assert.Error(t, store.Remove(ctx, "/etc/passwd"))
}

func TestDiskStoreRejectsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, 1<<20)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), KindImage, fileHeader(t, "image", "doc.pdf", []byte("pdf")))
	assert.ErrorIs(t, err, ErrFileType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMinioStoreReferences(t *testing.T) {
	store := &MinioStore{bucket: "forum-uploads", publicURL: "http://localhost:9000"}
	assert.Equal(t, "http://localhost:9000/forum-uploads/cat-1.png", store.objectURL("cat-1.png"))
	assert.Error(t, store.Remove(context.Background(), "/uploads/cat-1.png"))
}
