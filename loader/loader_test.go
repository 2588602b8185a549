package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/examgraph/examgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTextbook(t *testing.T, root string, n int, body string) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprintf("textbook%d", n))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, fmt.Sprintf("textbook%d_structured.json", n))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadTextbook(t *testing.T) {
	t.Run("Load chunks in file order with sequence indices", func(t *testing.T) {
		root := t.TempDir()
		writeTextbook(t, root, 1, `[
			{"chapter":"1","section":"1.1","content":"Recursion reduces a problem.","topics":["recursion"]},
			{"chapter":"1","section":"1.2","content":"Each call pushes a frame.","topics":["stack"],"metadata":{"page":12}}
		]`)

		chunks, err := LoadTextbook(filepath.Join(root, "textbook1", "textbook1_structured.json"), 1)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "tb1_node0", chunks[0].ID, "Expected derived chunk id")
		assert.Equal(t, 0, chunks[0].SequenceIndex)
		assert.Equal(t, 1, chunks[1].SequenceIndex)
		assert.Equal(t, []string{"stack"}, chunks[1].Topics)
		assert.Equal(t, float64(12), chunks[1].Metadata["page"])
	})

	t.Run("Explicit chunk ids are kept", func(t *testing.T) {
		root := t.TempDir()
		writeTextbook(t, root, 1, `[{"id":"intro","content":"Overview.","topics":["overview"]}]`)

		chunks, err := LoadTextbook(filepath.Join(root, "textbook1", "textbook1_structured.json"), 1)

		require.NoError(t, err)
		assert.Equal(t, "intro", chunks[0].ID)
	})

	t.Run("Missing file is an error", func(t *testing.T) {
		_, err := LoadTextbook(filepath.Join(t.TempDir(), "nope.json"), 1)

		assert.Error(t, err)
	})

	t.Run("Invalid json is an error", func(t *testing.T) {
		root := t.TempDir()
		writeTextbook(t, root, 1, `{"not":"an array"}`)

		_, err := LoadTextbook(filepath.Join(root, "textbook1", "textbook1_structured.json"), 1)

		assert.Error(t, err)
	})
}

func TestLoadDirectory(t *testing.T) {
	t.Run("Load all present textbooks in numeric order", func(t *testing.T) {
		root := t.TempDir()
		writeTextbook(t, root, 1, `[{"content":"First book.","topics":["a"]}]`)
		writeTextbook(t, root, 3, `[{"content":"Third book.","topics":["b"]}]`)

		chunks, err := LoadDirectory(root, 20, slog.Default())

		require.NoError(t, err)
		require.Len(t, chunks, 2, "Expected the missing textbook2 to be skipped silently")
		assert.Equal(t, 1, chunks[0].TextbookID)
		assert.Equal(t, 3, chunks[1].TextbookID)
	})

	t.Run("Invalid textbook is logged and skipped, not fatal", func(t *testing.T) {
		root := t.TempDir()
		writeTextbook(t, root, 1, `[{"content":"Good book.","topics":["a"]}]`)
		writeTextbook(t, root, 2, `not json`)

		chunks, err := LoadDirectory(root, 20, slog.Default())

		require.NoError(t, err)
		assert.Len(t, chunks, 1, "Expected only the readable textbook")
	})

	t.Run("MaxTextbooks bounds the scan", func(t *testing.T) {
		root := t.TempDir()
		writeTextbook(t, root, 1, `[{"content":"First.","topics":["a"]}]`)
		writeTextbook(t, root, 2, `[{"content":"Second.","topics":["b"]}]`)

		chunks, err := LoadDirectory(root, 1, slog.Default())

		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("Non-positive max is a configuration error", func(t *testing.T) {
		var configErr *model.ConfigurationError

		_, err := LoadDirectory(t.TempDir(), 0, slog.Default())
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("Empty directory yields no chunks and no error", func(t *testing.T) {
		chunks, err := LoadDirectory(t.TempDir(), 20, slog.Default())

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}
