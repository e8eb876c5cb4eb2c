// Package dropdir watches a local directory and ingests files dropped
// into it, as an alternative entry point to the HTTP upload route.
package dropdir

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driving"
	"github.com/docuchat/docuchat/internal/logger"
)

// Watcher ingests files created in a directory on behalf of a fixed
// user.
type Watcher struct {
	dir    string
	userID string
	ingest driving.IngestionService
}

// NewWatcher creates a watcher for the given directory. The directory
// must exist; the owning user must be set.
func NewWatcher(dir, userID string, ingest driving.IngestionService) (*Watcher, error) {
	if userID == "" {
		return nil, fmt.Errorf("dropdir: user ID: %w", domain.ErrNotConfigured)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dropdir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dropdir: %s is not a directory", dir)
	}
	return &Watcher{dir: dir, userID: userID, ingest: ingest}, nil
}

// Run watches the directory until ctx is cancelled. Files present
// before Run starts are not picked up; only new writes are.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s for user %s", w.dir, w.userID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Create covers both fresh files and moves into the
			// directory; editors that write in place emit Write.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if err := w.handleFile(ctx, event.Name); err != nil {
				logger.Error("ingesting %s: %v", event.Name, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error: %v", err)
		}
	}
}

// handleFile reads one dropped file and runs it through ingestion.
// Directories and hidden files are skipped.
func (w *Watcher) handleFile(ctx context.Context, path string) error {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "text/plain"
	}

	doc, err := w.ingest.IngestUpload(ctx, domain.Upload{
		UserID:   w.userID,
		Filename: name,
		MimeType: mimeType,
		Size:     info.Size(),
		Content:  content,
	})
	if err != nil {
		return err
	}

	logger.Info("ingested %s as document %s (%s)", name, doc.ID, doc.Status)
	return nil
}
