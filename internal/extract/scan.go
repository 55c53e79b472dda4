package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ScannedFile represents a supported file found during a folder scan.
type ScannedFile struct {
	RelPath string // Relative path from the scan root, with forward slashes
	AbsPath string // Absolute file path
	Type    string // TypeText or TypeMarkdown
}

// LoadedFile is a scanned file with its extracted text.
type LoadedFile struct {
	ScannedFile
	Text string
	Size int64
}

// ScanDir walks root and returns every .txt and .md file, skipping hidden directories.
func ScanDir(ctx context.Context, root string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		fileType, err := TypeFromName(d.Name())
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}

		files = append(files, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: absPath,
			Type:    fileType,
		})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return files, nil
}

// LoadDir scans root and extracts every file concurrently, at most workers at a time.
// Files without readable text are skipped; any other failure aborts the load.
// Results keep the scan order.
func LoadDir(ctx context.Context, root string, workers int) ([]LoadedFile, error) {
	files, err := ScanDir(ctx, root)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 4
	}

	loaded := make([]*LoadedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.AbsPath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", f.RelPath, err)
			}
			text, err := Text(f.Type, data)
			if errors.Is(err, ErrNoText) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to extract %s: %w", f.RelPath, err)
			}
			loaded[i] = &LoadedFile{ScannedFile: f, Text: text, Size: int64(len(data))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]LoadedFile, 0, len(loaded))
	for _, l := range loaded {
		if l != nil {
			out = append(out, *l)
		}
	}
	return out, nil
}
