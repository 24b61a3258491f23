package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()

	zipPath := filepath.Join(dir, "fixture.zip")
	out, err := os.Create(zipPath)
	require.NoError(t, err)
	defer out.Close()

	w := zip.NewWriter(out)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func TestExtractAndFindByExt(t *testing.T) {
	dir := t.TempDir()
	zipPath := writeZip(t, dir, map[string]string{
		"data-download-pub78.txt": "123|Foo|City|ST|US|PC\n",
	})

	extractDir := filepath.Join(dir, "extracted")
	require.NoError(t, os.MkdirAll(extractDir, 0o755))
	require.NoError(t, Extract(zipPath, extractDir))

	found, err := FindByExt(extractDir, ".txt")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(extractDir, "data-download-pub78.txt"), found)

	content, err := os.ReadFile(found)
	require.NoError(t, err)
	require.Equal(t, "123|Foo|City|ST|US|PC\n", string(content))
}

func TestFindByExtNoMatch(t *testing.T) {
	_, err := FindByExt(t.TempDir(), ".txt")
	require.ErrorContains(t, err, "no .txt file found")
}

func TestFindByExtAmbiguous(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))

	_, err := FindByExt(dir, ".txt")
	require.ErrorContains(t, err, "ambiguous")
}

func TestFindAllByExt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "deeper"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<a/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.XML"), []byte("<b/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "deeper", "c.xml"), []byte("<c/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "skip.json"), []byte("{}"), 0o644))

	files, err := FindAllByExt(dir, ".xml")
	require.NoError(t, err)
	require.Len(t, files, 3)
}

func TestCompressFileRoundtrip(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "series_990_2022.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("fileName,TaxYr\nf.xml,2022\n"), 0o644))

	zipPath, err := CompressFile(csvPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "series_990_2022.zip"), zipPath)

	extractDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(extractDir, 0o755))
	require.NoError(t, Extract(zipPath, extractDir))

	content, err := os.ReadFile(filepath.Join(extractDir, "series_990_2022.csv"))
	require.NoError(t, err)
	require.Equal(t, "fileName,TaxYr\nf.xml,2022\n", string(content))
}

func TestCleanupIgnoresMissing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tmp.zip")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	Cleanup(file, filepath.Join(dir, "does-not-exist"), "")

	_, err := os.Stat(file)
	require.True(t, os.IsNotExist(err))
}
