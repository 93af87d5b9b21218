package datastore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInmemBuiltin(t *testing.T) {
	store, err := Open(t.Context(), &Options{Driver: "inmem", Seed: "builtin"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(t.Context()))

	contacts, err := store.List(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, contacts, 10)

	contacts, err = store.List(t.Context(), "kent")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Kent C. Dodds", contacts[0].Name())
}

func TestOpenSQLiteSeedOnce(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("- first: Ana\n- first: Bob\n"), 0o600))
	options := &Options{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "contacts.db"), Seed: seed}

	for range 2 {
		store, err := Open(t.Context(), options, slog.New(slog.DiscardHandler))
		require.NoError(t, err)
		require.NoError(t, store.Ping(t.Context()))

		contacts, err := store.List(t.Context(), "")
		require.NoError(t, err)
		assert.Len(t, contacts, 2)
		require.NoError(t, store.Close())
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(t.Context(), &Options{Driver: "postgres"}, slog.New(slog.DiscardHandler))
	require.ErrorContains(t, err, "unknown datastore driver")

	_, err = Open(t.Context(), &Options{Seed: filepath.Join(t.TempDir(), "missing.yaml")}, slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "contacts.yaml")
	require.NoError(t, os.WriteFile(file, []byte("- first: Ana\n- first: Bob\n- last: Lima\n"), 0o600))
	options := &Options{Driver: "sqlite", DSN: filepath.Join(dir, "contacts.db"), Seed: "builtin"}
	logger := slog.New(slog.DiscardHandler)

	n, err := Import(t.Context(), options, file, logger)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "builtin", options.Seed)

	n, err = Import(t.Context(), options, file, logger)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	store, err := Open(t.Context(), &Options{Driver: "sqlite", DSN: options.DSN}, logger)
	require.NoError(t, err)
	defer store.Close()
	contacts, err := store.List(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, contacts, 6)
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	n, err := Import(t.Context(), &Options{}, filepath.Join(dir, "missing.yaml"), logger)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, n)

	file := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("first: not a list\n"), 0o600))
	_, err = Import(t.Context(), &Options{}, file, logger)
	require.ErrorContains(t, err, "decoding contacts")

	require.NoError(t, os.WriteFile(file, []byte("- first: Ana\n"), 0o600))
	_, err = Import(t.Context(), &Options{Driver: "postgres"}, file, logger)
	require.ErrorContains(t, err, "unknown datastore driver")
}
