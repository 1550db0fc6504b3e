// Package artifact packages serialised delivery documents as replication content.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Ensure FilePackager implements the interface.
var _ driven.ArtifactPackager = (*FilePackager)(nil)

// FilePackager turns temp files into artifacts. With a spool directory the
// file is moved there under its artifact id, otherwise it stays in place.
type FilePackager struct {
	spoolDir string
}

// NewFilePackager creates a packager. spoolDir may be empty.
func NewFilePackager(spoolDir string) (*FilePackager, error) {
	if spoolDir != "" {
		if err := os.MkdirAll(spoolDir, 0700); err != nil {
			return nil, fmt.Errorf("create spool directory: %w", err)
		}
	}
	return &FilePackager{spoolDir: spoolDir}, nil
}

// Package stats file and wraps it as an artifact.
func (p *FilePackager) Package(_ context.Context, contentType, file string) (*domain.Artifact, error) {
	id := uuid.NewString()
	target := file
	if p.spoolDir != "" {
		target = filepath.Join(p.spoolDir, id+filepath.Ext(file))
		if err := os.Rename(file, target); err != nil {
			return nil, fmt.Errorf("spool %s: %w", file, err)
		}
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}
	return &domain.Artifact{
		ID:          id,
		ContentType: contentType,
		Path:        target,
		Length:      info.Size(),
	}, nil
}
