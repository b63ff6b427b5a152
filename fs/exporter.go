// Package fs writes exported records to the local filesystem.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/fieldscrape"
)

// Exporter renders cached records and writes them as files.
type Exporter struct {
	Records fieldscrape.RecordService

	// Dir is the output directory. It is created if missing.
	Dir string
}

// NewExporter creates an Exporter writing into dir.
func NewExporter(records fieldscrape.RecordService, dir string) *Exporter {
	return &Exporter{Records: records, Dir: dir}
}

// Export renders the record stored under key in format and writes it to
// Dir under the format's fixed filename. It returns the written path.
// Nothing is written if the record cannot be rendered.
func (e *Exporter) Export(ctx context.Context, key string, format fieldscrape.ExportFormat) (string, error) {
	body, err := e.Records.ExportRecord(ctx, key, format)
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.Dir, format.Filename())
	if err := WriteFileAtomic(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers see either the old file or the complete new one.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "create temp file in %s", dir)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "write %s", path)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "sync %s", path)
	}
	if err = tmp.Close(); err != nil {
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "close %s", path)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "chmod %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "rename into %s", path)
	}
	return nil
}
