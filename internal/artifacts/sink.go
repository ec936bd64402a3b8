// Package artifacts stores generated report files, either in a local
// directory or in an Azure storage container.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BuseDenizH/EssayEval-NLP/internal/reporting"
)

// Sink stores an artifact and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, a *reporting.Artifact) (string, error)
}

// DirSink writes artifacts into a directory, creating it when needed.
type DirSink struct {
	Dir string
}

// NewDirSink creates a sink for dir. An empty dir means the working directory.
func NewDirSink(dir string) *DirSink {
	if dir == "" {
		dir = "."
	}
	return &DirSink{Dir: dir}
}

func (d *DirSink) Put(ctx context.Context, a *reporting.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a.Filename == "" || filepath.Base(a.Filename) != a.Filename {
		return "", fmt.Errorf("invalid artifact filename %q", a.Filename)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(d.Dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", a.Filename, err)
	}
	return path, nil
}

// Multi stores every artifact in each sink in turn and stops at the first error.
type Multi []Sink

func (m Multi) Put(ctx context.Context, a *reporting.Artifact) (string, error) {
	var last string
	for _, s := range m {
		loc, err := s.Put(ctx, a)
		if err != nil {
			return "", err
		}
		last = loc
	}
	return last, nil
}
