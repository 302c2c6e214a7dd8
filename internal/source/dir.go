package source

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/perimetric/council/internal/models"
)

// codeExtensions lists the file types worth reviewing.
var codeExtensions = map[string]bool{
	".go":   true,
	".py":   true,
	".js":   true,
	".jsx":  true,
	".ts":   true,
	".tsx":  true,
	".java": true,
	".rb":   true,
	".rs":   true,
	".c":    true,
	".h":    true,
	".cpp":  true,
	".cs":   true,
	".php":  true,
	".sh":   true,
	".sql":  true,
}

// skipDirs names directories never worth descending into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// defaultMaxFileBytes caps a single file; anything larger is skipped.
const defaultMaxFileBytes = 512 * 1024

// Dir serves changesets from the local filesystem: the locator is a directory
// whose code files become the review's input units, with paths relative to it.
type Dir struct {
	// MaxFileBytes overrides the per-file size cap when positive.
	MaxFileBytes int64
}

// NewDir creates a local-directory provider.
func NewDir() *Dir {
	return &Dir{}
}

// Name implements Provider.
func (d *Dir) Name() string {
	return "dir"
}

// Fetch walks locator and returns its code files.
func (d *Dir) Fetch(ctx context.Context, locator string) ([]models.SourceFile, error) {
	info, err := os.Stat(locator)
	if err != nil {
		return nil, &FetchError{Provider: d.Name(), Locator: locator, Err: err}
	}
	if !info.IsDir() {
		return nil, &FetchError{Provider: d.Name(), Locator: locator, Err: errors.New("not a directory")}
	}

	maxBytes := d.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxFileBytes
	}

	var files []models.SourceFile
	walkFn := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if skipDirs[entry.Name()] || (strings.HasPrefix(entry.Name(), ".") && path != locator) {
				return filepath.SkipDir
			}
			return nil
		}
		if !codeExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		fi, err := entry.Info()
		if err != nil {
			return err
		}
		if fi.Size() == 0 || fi.Size() > maxBytes {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		rel, err := filepath.Rel(locator, path)
		if err != nil {
			rel = path
		}
		files = append(files, models.SourceFile{Path: filepath.ToSlash(rel), Content: string(content)})
		return nil
	}

	if err := filepath.WalkDir(locator, walkFn); err != nil {
		return nil, &FetchError{Provider: d.Name(), Locator: locator, Err: err}
	}
	if len(files) == 0 {
		return nil, &FetchError{Provider: d.Name(), Locator: locator, Err: errors.New("no reviewable files found")}
	}
	return files, nil
}
