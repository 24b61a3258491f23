package master

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"npetl-backend/lib/fetch"
	"npetl-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestDownloadCombines(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/master")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/eo1.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("EIN,NAME,STATE\n000587764,COMMUNITY FUND,AK\n"))
	})
	mux.HandleFunc("/eo2.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("EIN,NAME,STATE\n010211478,HARBOR LIGHT,ME\n010211513,PINE TRUST,ME\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	d := NewDownloader(fetch.NewClient(), []string{
		server.URL + "/eo1.csv",
		server.URL + "/eo2.csv",
	})
	table, err := d.Download(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"EIN", "NAME", "STATE"}, table.Columns)
	require.Len(t, table.Rows, 3)
	require.Equal(t, "010211513", table.Rows[2][0])
}

func TestDownloadAbortsOnMissingExtract(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/master")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/eo1.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("EIN,NAME\n123,FOO\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	d := NewDownloader(fetch.NewClient(), []string{
		server.URL + "/eo1.csv",
		server.URL + "/eo2.csv",
	})
	_, err := d.Download(context.Background())
	require.Error(t, err)
}
