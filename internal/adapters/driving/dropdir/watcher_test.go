package dropdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// mockIngest records uploads.
type mockIngest struct {
	uploads []domain.Upload
}

func (m *mockIngest) IngestUpload(_ context.Context, upload domain.Upload) (*domain.Document, error) {
	m.uploads = append(m.uploads, upload)
	return &domain.Document{ID: "doc-1", UserID: upload.UserID, Status: domain.StatusIndexed}, nil
}

func (m *mockIngest) ReingestDocument(_ context.Context, userID, id string) (*domain.Document, error) {
	return &domain.Document{ID: id, UserID: userID, Status: domain.StatusIndexed}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewWatcher_Validation(t *testing.T) {
	dir := t.TempDir()

	_, err := NewWatcher(dir, "", &mockIngest{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewWatcher(filepath.Join(dir, "missing"), "u1", &mockIngest{})
	assert.Error(t, err)

	file := writeFile(t, dir, "file.txt", "x")
	_, err = NewWatcher(file, "u1", &mockIngest{})
	assert.Error(t, err)
}

func TestHandleFile(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngest{}
	watcher, err := NewWatcher(dir, "u1", ingest)
	require.NoError(t, err)

	path := writeFile(t, dir, "notes.txt", "dropped content")
	require.NoError(t, watcher.handleFile(context.Background(), path))

	require.Len(t, ingest.uploads, 1)
	upload := ingest.uploads[0]
	assert.Equal(t, "u1", upload.UserID)
	assert.Equal(t, "notes.txt", upload.Filename)
	assert.Contains(t, upload.MimeType, "text/plain")
	assert.Equal(t, []byte("dropped content"), upload.Content)
	assert.Equal(t, int64(len("dropped content")), upload.Size)
}

func TestHandleFile_SkipsHiddenAndDirectories(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngest{}
	watcher, err := NewWatcher(dir, "u1", ingest)
	require.NoError(t, err)
	ctx := context.Background()

	hidden := writeFile(t, dir, ".hidden", "x")
	require.NoError(t, watcher.handleFile(ctx, hidden))

	sub := filepath.Join(dir, "subdir")
	require.NoError(t, os.Mkdir(sub, 0700))
	require.NoError(t, watcher.handleFile(ctx, sub))

	assert.Empty(t, ingest.uploads)
}

func TestHandleFile_MissingFile(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewWatcher(dir, "u1", &mockIngest{})
	require.NoError(t, err)

	err = watcher.handleFile(context.Background(), filepath.Join(dir, "gone.txt"))
	assert.Error(t, err)
}
