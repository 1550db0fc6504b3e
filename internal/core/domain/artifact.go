package domain

import (
	"io"
	"os"
)

// ContentTypeJSON is the mime type of serialised delivery documents.
const ContentTypeJSON = "application/json"

// Artifact is packaged replication content.
// A void artifact means the builder chain produced nothing to send.
type Artifact struct {
	ID          string
	ContentType string
	Path        string
	Length      int64
	Void        bool
}

// VoidArtifact returns the "nothing to replicate" artifact.
func VoidArtifact() *Artifact {
	return &Artifact{Void: true}
}

// IsEmpty reports whether the artifact carries no bytes.
func (a *Artifact) IsEmpty() bool {
	return a == nil || a.Void || a.Length == 0 || a.Path == ""
}

// Open opens the artifact content for reading.
func (a *Artifact) Open() (io.ReadCloser, error) {
	return os.Open(a.Path)
}

// Release removes the backing file.
func (a *Artifact) Release() error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
