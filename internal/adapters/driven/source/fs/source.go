// Package fs provides a DocumentSource backed by a local directory.
//
// The source walks the directory once, emitting every readable text
// file, then watches it with fsnotify and emits files again as they
// are created or modified. Hidden files and directories are skipped.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/normalisers"
)

// MaxFileBytes bounds the size of a single source file. Larger files
// are skipped rather than failing the whole walk.
const MaxFileBytes = 10 << 20

// debounceWindow is how long a watched path must stay quiet before it
// is ingested. Bursts of writes within the window collapse to one emit.
const debounceWindow = 200 * time.Millisecond

// textExtensions lists the file extensions treated as ingestible text.
var textExtensions = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".rst":  "text/plain",
	".csv":  "text/csv",
	".json": "application/json",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".toml": "application/toml",
	".html": "text/html",
	".xml":  "application/xml",
	".log":  "text/plain",
}

// Source supplies documents from a watched directory.
type Source struct {
	projectID   string
	rootPath    string
	watch       bool
	normalisers *normalisers.Registry
}

// Compile-time check that Source implements the DocumentSource interface
var _ driven.DocumentSource = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithWatch keeps the source open after the initial scan and emits
// files as they are created or modified. Without it the source is
// exhausted once the scan completes.
func WithWatch() Option {
	return func(s *Source) {
		s.watch = true
	}
}

// New creates a directory source for the given project.
func New(projectID, rootPath string, opts ...Option) *Source {
	s := &Source{
		projectID:   projectID,
		rootPath:    rootPath,
		normalisers: normalisers.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Documents walks the root directory and emits each text file. With
// watching enabled it then follows filesystem events until the context
// is cancelled. Both channels are closed when the source is exhausted.
func (s *Source) Documents(ctx context.Context) (<-chan driven.IncomingDocument, <-chan error) {
	docs := make(chan driven.IncomingDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := s.scan(ctx, docs, errs); err != nil {
			return
		}
		if s.watch {
			s.follow(ctx, docs, errs)
		}
	}()

	return docs, errs
}

// Close releases resources. The per-call watcher is owned by Documents,
// so there is nothing to release here.
func (s *Source) Close() error {
	return nil
}

// scan emits every ingestible file under the root. Unreadable files
// are reported on the error channel without stopping the walk; only a
// cancelled context aborts it.
func (s *Source) scan(ctx context.Context, docs chan<- driven.IncomingDocument, errs chan<- error) error {
	return filepath.WalkDir(s.rootPath, func(path string, entry fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.reportErr(errs, fmt.Errorf("walk %s: %w", path, err))
			return nil
		}
		if entry.IsDir() {
			if path != s.rootPath && isHidden(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		s.emitFile(ctx, path, docs, errs)
		return nil
	})
}

// follow watches the root for new and modified files until the context
// is cancelled.
func (s *Source) follow(ctx context.Context, docs chan<- driven.IncomingDocument, errs chan<- error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.reportErr(errs, fmt.Errorf("create watcher: %w", err))
		return
	}
	defer watcher.Close()

	// Watch the root and every visible subdirectory. fsnotify watches
	// are not recursive.
	err = filepath.WalkDir(s.rootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil //nolint:nilerr // unreadable entries were reported during the scan
		}
		if path != s.rootPath && isHidden(entry.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		s.reportErr(errs, fmt.Errorf("watch %s: %w", s.rootPath, err))
		return
	}

	// Editors save in bursts of writes. Each event only marks the path
	// pending; a path is emitted once it has been quiet for the debounce
	// window, so a burst ingests the file once with its final content.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounceWindow / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if !isHidden(filepath.Base(event.Name)) {
					_ = watcher.Add(event.Name)
				}
				continue
			}
			pending[event.Name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < debounceWindow {
					continue
				}
				delete(pending, path)
				s.emitFile(ctx, path, docs, errs)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.reportErr(errs, fmt.Errorf("watch: %w", err))
		}
	}
}

// emitFile reads a single file and sends it if it is ingestible.
func (s *Source) emitFile(ctx context.Context, path string, docs chan<- driven.IncomingDocument, errs chan<- error) {
	contentType, ok := ingestible(path)
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		s.reportErr(errs, fmt.Errorf("stat %s: %w", path, err))
		return
	}
	if info.Size() > MaxFileBytes {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.reportErr(errs, fmt.Errorf("read %s: %w", path, err))
		return
	}

	name, err := filepath.Rel(s.rootPath, path)
	if err != nil {
		name = filepath.Base(path)
	}

	select {
	case docs <- driven.IncomingDocument{
		ProjectID:   s.projectID,
		Name:        name,
		Content:     s.normalisers.Normalise(contentType, string(content)),
		ContentType: contentType,
	}:
	case <-ctx.Done():
	}
}

// reportErr sends on the error channel unless its buffer is full.
// Source errors are advisory; dropping one never blocks document
// delivery.
func (s *Source) reportErr(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

// DetectContentType returns the content type for a file path and
// whether the extension is recognised as ingestible text.
func DetectContentType(path string) (string, bool) {
	contentType, ok := textExtensions[strings.ToLower(filepath.Ext(path))]
	return contentType, ok
}

// ingestible reports whether the file should be ingested, and the
// content type to tag it with.
func ingestible(path string) (string, bool) {
	if isHidden(filepath.Base(path)) {
		return "", false
	}
	return DetectContentType(path)
}

// isHidden reports whether a file or directory name is dot-prefixed.
// "." and ".." are path components, not hidden entries.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
