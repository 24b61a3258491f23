package mongoload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(map[string]string{
		"fileName":                    "202301_public.xml",
		"ReturnHeader_TaxYr":          "2022",
		"ReturnHeader_Filer_EIN":      "000587764",
		"ReturnHeader_Filer_Name":     " Community Fund ",
		"ReturnData_IRS990_GrossRcpt": "",
	})

	require.Equal(t, map[string]any{
		"fileName": "202301_public.xml",
		"ReturnHeader": map[string]any{
			"TaxYr": "2022",
			"Filer": map[string]any{
				"EIN":  "000587764",
				"Name": "Community Fund",
			},
		},
	}, doc)
}

func TestBuildDocumentEmptyRow(t *testing.T) {
	require.Empty(t, BuildDocument(map[string]string{"a": "  ", "b": ""}))
}

func TestBuildDocumentLeafPrefixConflict(t *testing.T) {
	doc := BuildDocument(map[string]string{
		"ReturnHeader_Filer":     "flat",
		"ReturnHeader_Filer_EIN": "000587764",
	})

	// the deeper path wins regardless of map iteration order
	require.Equal(t, map[string]any{
		"ReturnHeader": map[string]any{
			"Filer": map[string]any{"EIN": "000587764"},
		},
	}, doc)
}
