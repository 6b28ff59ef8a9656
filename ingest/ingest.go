// Package ingest keeps a documents directory in sync with the vector
// store: an initial scan reconciles files against the index by content
// hash, then a filesystem watcher re-indexes changes as they land.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github/itish2003/finsight/config"
	"github/itish2003/finsight/models"
)

// Index is the slice of the vector store the indexer mutates.
type Index interface {
	Insert(ctx context.Context, chunks []models.Chunk) ([]string, error)
	All(ctx context.Context) ([]models.Chunk, error)
	DeleteBySource(ctx context.Context, path string) error
}

// Invalidator is notified after every index mutation so memoized
// retrievals over stale collection state get dropped.
type Invalidator interface {
	Invalidate()
}

// Indexer scans, chunks and inserts documents, and prunes index entries
// whose source files are gone.
type Indexer struct {
	store    Index
	cache    Invalidator
	splitter textsplitter.TextSplitter
}

// New builds an indexer with a recursive-character splitter sized from
// configuration.
func New(store Index, cache Invalidator, cfg config.IngestConfig) *Indexer {
	return &Indexer{
		store: store,
		cache: cache,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
	}
}

// ScanDirectory syncs the directory with the index: new and changed files
// are (re-)indexed, files that disappeared are pruned.
func (ix *Indexer) ScanDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting directory scan for: %s", dirPath)

	indexed, err := ix.currentIndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not read current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d files currently in the index.", len(indexed))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isSupportedFile(path) {
			return nil
		}
		localFiles[path] = true

		hash, err := fileHash(path)
		if err != nil {
			log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
			return nil
		}
		if prev, ok := indexed[path]; ok {
			if prev == hash {
				return nil
			}
			log.Printf("INDEXER: File has changed: %s. Re-indexing...", path)
			if err := ix.RemoveFile(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
				return nil
			}
		}

		log.Printf("INDEXER: Indexing new/modified file: %s", path)
		if err := ix.IndexFile(ctx, path, hash); err != nil {
			log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	for path := range indexed {
		if !localFiles[path] {
			log.Printf("INDEXER: File deleted: %s. Removing from index...", path)
			if err := ix.RemoveFile(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete records for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Directory scan finished.")
}

// IndexFile splits one file into chunks and inserts them. Chunk ids are
// derived from the content hash, so re-inserting an unchanged file is a
// no-op upsert instead of a duplicate.
func (ix *Indexer) IndexFile(ctx context.Context, path, hash string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	pieces, err := ix.splitter.SplitText(string(content))
	if err != nil {
		return err
	}
	log.Printf("INDEXER: Split %s into %d chunks.", path, len(pieces))

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, models.Chunk{
			ID:   fmt.Sprintf("%s-chunk%04d", hash[:12], i),
			Text: text,
			Metadata: map[string]interface{}{
				"source":      filepath.Base(path),
				"source_file": path,
				"file_hash":   hash,
				"chunk_num":   i,
			},
		})
	}

	ids, err := ix.store.Insert(ctx, chunks)
	if err != nil {
		return err
	}
	if len(ids) < len(chunks) {
		log.Printf("INDEXER WARN: Inserted %d of %d chunks for %s", len(ids), len(chunks), path)
	}
	ix.cache.Invalidate()
	return nil
}

// RemoveFile drops every chunk that came from path.
func (ix *Indexer) RemoveFile(ctx context.Context, path string) error {
	if err := ix.store.DeleteBySource(ctx, path); err != nil {
		return err
	}
	ix.cache.Invalidate()
	return nil
}

// currentIndexState maps each indexed source file to the content hash it
// was indexed under.
func (ix *Indexer) currentIndexState(ctx context.Context) (map[string]string, error) {
	chunks, err := ix.store.All(ctx)
	if err != nil {
		return nil, err
	}
	state := make(map[string]string)
	for _, chunk := range chunks {
		path, ok := chunk.Metadata["source_file"].(string)
		if !ok {
			continue
		}
		hash, ok := chunk.Metadata["file_hash"].(string)
		if !ok {
			continue
		}
		if _, exists := state[path]; !exists {
			state[path] = hash
		}
	}
	return state, nil
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

func fileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
