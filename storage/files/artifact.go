package filestore

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/crackinspine82/RattoMatt-sub001/core"
	"github.com/crackinspine82/RattoMatt-sub001/core/content"
)

// ArtifactStore reads and overwrites content artifacts on the local filesystem.
type ArtifactStore struct{}

var _ content.Store = (*ArtifactStore)(nil) // interface compliance check

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{}
}

func (ArtifactStore) Load(path string, shape content.Shape) (*content.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewPreconditionError(errors.New("artifact not found"), core.FieldError{
				Field: "path",
				Error: "file not found: " + path,
			})
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	artifact, err := content.Parse(data, shape)
	if err != nil {
		var fmtErr *core.FormatError
		if errors.As(err, &fmtErr) {
			fmtErr.Path = path
		}
		return nil, err
	}
	return artifact, nil
}

// Save replaces the file at path, keeping its permissions. The new content is written
// to a temporary file next to it and renamed over the original, so a failed write
// leaves the original untouched.
func (ArtifactStore) Save(path string, artifact *content.Artifact) error {
	data, err := artifact.Bytes()
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}

	perm := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err = tmp.Chmod(perm); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}
