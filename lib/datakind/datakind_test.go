package datakind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, k := range All() {
		parsed, err := Parse(string(k))
		require.NoError(t, err)
		require.Equal(t, k, parsed)
		require.True(t, parsed.Valid())
	}

	_, err := Parse("PUB_79")
	require.Error(t, err)
	require.False(t, Kind("").Valid())
}

func TestFolderKey(t *testing.T) {
	require.Equal(t, "PUB_78_UPLOAD_FOLDER_ID", Pub78.FolderKey())
	require.Equal(t, "SERIES_990_UPLOAD_FOLDER_ID", Series990.FolderKey())
}

func TestArtifactPrefix(t *testing.T) {
	require.Equal(t, "series_990", Series990.ArtifactPrefix())
	require.Equal(t, "form_990_master", Form990Master.ArtifactPrefix())
}
