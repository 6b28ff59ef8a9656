package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/finsight/config"
	"github/itish2003/finsight/models"
)

// fakeIndex records every mutation the indexer performs against it and
// serves back whatever chunks have been inserted so far.
type fakeIndex struct {
	inserted  [][]models.Chunk
	deleted   []string
	insertErr error
	allErr    error
}

func (f *fakeIndex) Insert(ctx context.Context, chunks []models.Chunk) ([]string, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, chunks)
	ids := make([]string, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ID
	}
	return ids, nil
}

func (f *fakeIndex) All(ctx context.Context) ([]models.Chunk, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	var out []models.Chunk
	for _, batch := range f.inserted {
		for _, ch := range batch {
			deleted := false
			for _, path := range f.deleted {
				if ch.Metadata["source_file"] == path {
					deleted = true
					break
				}
			}
			if !deleted {
				out = append(out, ch)
			}
		}
	}
	return out, nil
}

func (f *fakeIndex) DeleteBySource(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeIndex) allChunks() []models.Chunk {
	chunks, _ := f.All(context.Background())
	return chunks
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate() { f.calls++ }

func newTestIndexer(store Index, cache Invalidator) *Indexer {
	return New(store, cache, config.IngestConfig{ChunkSize: 200, ChunkOverlap: 20})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScanDirectoryIndexesNewFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "Revenue was $100 in 2021 and $120 in 2022.")
	writeFile(t, dir, "image.png", "not a document")

	store := &fakeIndex{}
	cache := &fakeInvalidator{}
	ix := newTestIndexer(store, cache)

	ix.ScanDirectory(context.Background(), dir)

	chunks := store.allChunks()
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.Equal(t, "report.txt", ch.Metadata["source"])
		assert.Equal(t, path, ch.Metadata["source_file"])
		assert.NotEmpty(t, ch.Metadata["file_hash"])
		assert.NotEmpty(t, ch.ID)
	}
	assert.Greater(t, cache.calls, 0)
}

func TestScanDirectorySkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "Fixed operating costs held at $40 per quarter.")

	store := &fakeIndex{}
	ix := newTestIndexer(store, &fakeInvalidator{})

	ctx := context.Background()
	ix.ScanDirectory(ctx, dir)
	firstInserts := len(store.inserted)
	require.Greater(t, firstInserts, 0)

	ix.ScanDirectory(ctx, dir)

	assert.Equal(t, firstInserts, len(store.inserted), "unchanged file must not be re-inserted")
	assert.Empty(t, store.deleted)
}

func TestScanDirectoryReindexesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.md", "Headcount was 12 in March.")

	store := &fakeIndex{}
	ix := newTestIndexer(store, &fakeInvalidator{})

	ctx := context.Background()
	ix.ScanDirectory(ctx, dir)
	firstInserts := len(store.inserted)

	writeFile(t, dir, "notes.md", "Headcount was 15 in April.")
	ix.ScanDirectory(ctx, dir)

	assert.Equal(t, []string{path}, store.deleted, "old chunks must be dropped before re-indexing")
	assert.Greater(t, len(store.inserted), firstInserts)
}

func TestScanDirectoryPrunesDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.txt", "Q1 margin was 8%.")

	store := &fakeIndex{}
	ix := newTestIndexer(store, &fakeInvalidator{})

	ctx := context.Background()
	ix.ScanDirectory(ctx, dir)
	require.NotEmpty(t, store.allChunks())

	require.NoError(t, os.Remove(path))
	ix.ScanDirectory(ctx, dir)

	assert.Contains(t, store.deleted, path)
	assert.Empty(t, store.allChunks())
}

func TestIndexFileChunkIDsAreDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "Net income rose from $10 to $14.")
	hash, err := fileHash(path)
	require.NoError(t, err)

	first := &fakeIndex{}
	require.NoError(t, newTestIndexer(first, &fakeInvalidator{}).IndexFile(context.Background(), path, hash))
	second := &fakeIndex{}
	require.NoError(t, newTestIndexer(second, &fakeInvalidator{}).IndexFile(context.Background(), path, hash))

	firstChunks := first.allChunks()
	secondChunks := second.allChunks()
	require.Equal(t, len(firstChunks), len(secondChunks))
	for i := range firstChunks {
		assert.Equal(t, firstChunks[i].ID, secondChunks[i].ID, "same content must yield the same chunk ids")
	}
}

func TestIndexFileInsertFailureLeavesCacheAlone(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "Gross profit was $55.")
	hash, err := fileHash(path)
	require.NoError(t, err)

	store := &fakeIndex{insertErr: errors.New("store down")}
	cache := &fakeInvalidator{}
	ix := newTestIndexer(store, cache)

	require.Error(t, ix.IndexFile(context.Background(), path, hash))
	assert.Zero(t, cache.calls)
}

func TestRemoveFileInvalidatesCache(t *testing.T) {
	store := &fakeIndex{}
	cache := &fakeInvalidator{}
	ix := newTestIndexer(store, cache)

	require.NoError(t, ix.RemoveFile(context.Background(), "/docs/gone.txt"))

	assert.Equal(t, []string{"/docs/gone.txt"}, store.deleted)
	assert.Equal(t, 1, cache.calls)
}

func TestIsSupportedFile(t *testing.T) {
	assert.True(t, isSupportedFile("report.txt"))
	assert.True(t, isSupportedFile("notes.MD"))
	assert.False(t, isSupportedFile("scan.pdf"))
	assert.False(t, isSupportedFile("archive.tar.gz"))
}

func TestFileHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "one")

	h1, err := fileHash(path)
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "two")
	h2, err := fileHash(path)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
