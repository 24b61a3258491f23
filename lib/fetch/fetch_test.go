package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"npetl-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/fetch")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("EIN|NAME\n123|Foo\n"))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest, err := NewClient().File(context.Background(), server.URL+"/pub78.txt", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "pub78.txt"), dest)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "EIN|NAME\n123|Foo\n", string(content))
}

func TestFileStatusError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/fetch")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := NewClient().File(context.Background(), server.URL+"/missing.zip", dir)
	require.Error(t, err)

	// the aborted download must not leave an artifact behind
	_, statErr := os.Stat(filepath.Join(dir, "missing.zip"))
	require.True(t, os.IsNotExist(statErr))
}

func TestFileBadName(t *testing.T) {
	_, err := NewClient().File(context.Background(), "https://apps.irs.gov/", t.TempDir())
	require.Error(t, err)
}
