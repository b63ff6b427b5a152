package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/fieldscrape"
	main "github.com/fwojciec/fieldscrape/cmd/fieldscrape"
	"github.com/fwojciec/fieldscrape/fs"
	"github.com/fwojciec/fieldscrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes the fixed filename into the output directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		records := &mock.RecordService{
			ExportRecordFn: func(_ context.Context, _ string, format fieldscrape.ExportFormat) ([]byte, error) {
				assert.Equal(t, fieldscrape.ExportJSON, format)
				return []byte(`{"title": ["X"]}`), nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Exporter: fs.NewExporter(records, dir),
		}

		err := (&main.ExportCmd{Key: "k", Format: "json", Out: dir}).Run(deps)

		require.NoError(t, err)
		path := filepath.Join(dir, "results.json")
		assert.Contains(t, stdout.String(), path)
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title": ["X"]}`, string(b))
	})

	t.Run("writes nothing when the record is missing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		records := &mock.RecordService{
			ExportRecordFn: func(context.Context, string, fieldscrape.ExportFormat) ([]byte, error) {
				return nil, fieldscrape.Errorf(fieldscrape.ENOTFOUND, "record not found")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   stderr,
			Exporter: fs.NewExporter(records, dir),
		}

		err := (&main.ExportCmd{Key: "k", Format: "csv", Out: dir}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "record not found")
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
