package gdrive

import (
	"testing"
	"time"

	"npetl-backend/lib/datakind"

	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	now := time.Date(2025, 8, 25, 10, 30, 0, 0, time.UTC)
	require.Equal(t, "pub_78_2025-08-25_103000_data.csv", ArtifactName(datakind.Pub78, now))
	require.Equal(t, "series_990_2025-08-25_103000_data.csv", ArtifactName(datakind.Series990, now))
}

func TestParseSeriesYear(t *testing.T) {
	testCases := []struct {
		name string
		year int
		ok   bool
	}{
		{"series_990_2022_data_2025-01-01_120000.zip", 2022, true},
		{"series_990_2019.zip", 2019, true},
		{"series_990_notayear_data.zip", 0, false},
		{"pub_78_2022_data.zip", 0, false},
		{"series_990", 0, false},
		{"series_990_99_data.zip", 0, false},
	}

	for _, test := range testCases {
		year, ok := ParseSeriesYear(test.name)
		require.Equal(t, test.ok, ok, test.name)
		require.Equal(t, test.year, year, test.name)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{CredentialsFile: "creds.json", Folders: map[string]string{}}
	require.ErrorContains(t, cfg.Validate(), "missing folder id")

	for _, kind := range datakind.All() {
		cfg.Folders[string(kind)] = "folder-" + string(kind)
	}
	require.NoError(t, cfg.Validate())

	cfg.CredentialsFile = ""
	require.ErrorContains(t, cfg.Validate(), "credentials_file")
}
