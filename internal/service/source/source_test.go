package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/self-updater/internal/config"
)

// newTestSource builds a Source pointed at the test server's manifest path.
func newTestSource(t *testing.T, ts *httptest.Server, maxSize int64) *Source {
	t.Helper()

	cfg := &config.Config{
		ManifestURL:     ts.URL + "/version.json",
		Timeout:         5 * time.Second,
		MaxArtifactSize: maxSize,
	}
	require.NoError(t, config.Validate(cfg))

	return New(cfg)
}

// TestFetchManifest verifies parsing of a well-formed manifest document.
func TestFetchManifest(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"version":"1.0.1","url":"https://updates.local/release.zip"}`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	manifest, err := newTestSource(t, ts, 0).FetchManifest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.0.1", manifest.Version)
	require.Equal(t, "https://updates.local/release.zip", manifest.URL)
}

// TestFetchManifest_MissingVersion ensures a manifest without the version
// field is rejected as a parse failure.
func TestFetchManifest_MissingVersion(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://updates.local/release.zip"}`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	_, err := newTestSource(t, ts, 0).FetchManifest(context.Background())
	require.ErrorIs(t, err, ErrMissingVersion)
}

// TestFetchManifest_MalformedBody ensures invalid JSON fails the fetch.
func TestFetchManifest_MalformedBody(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	_, err := newTestSource(t, ts, 0).FetchManifest(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrBadStatus)
}

// TestFetchManifest_ServerError maps non-success statuses to ErrBadStatus.
func TestFetchManifest_ServerError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	_, err := newTestSource(t, ts, 0).FetchManifest(context.Background())
	require.ErrorIs(t, err, ErrBadStatus)
}

// TestFetchArtifact verifies the archive bytes arrive intact and that the
// size cap rejects oversized bodies.
func TestFetchArtifact(t *testing.T) {
	t.Parallel()

	body := []byte("zip-bytes-here")

	mux := http.NewServeMux()
	mux.HandleFunc("/release.zip", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	// Generous cap: full body comes back.
	got, err := newTestSource(t, ts, 1<<20).FetchArtifact(context.Background(), ts.URL+"/release.zip")
	require.NoError(t, err)
	require.Equal(t, body, got)

	// Cap exactly at the body size still succeeds.
	got, err = newTestSource(t, ts, int64(len(body))).FetchArtifact(context.Background(), ts.URL+"/release.zip")
	require.NoError(t, err)
	require.Equal(t, body, got)

	// Cap below the body size fails.
	_, err = newTestSource(t, ts, int64(len(body))-1).FetchArtifact(context.Background(), ts.URL+"/release.zip")
	require.ErrorIs(t, err, ErrArtifactTooLarge)
}
