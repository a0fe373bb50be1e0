package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/oshokin/self-updater/internal/config"
	"github.com/oshokin/self-updater/internal/domain/release"
	"github.com/oshokin/self-updater/internal/logger"
)

var (
	// ErrBadStatus is returned when an endpoint answers with a non-success code.
	ErrBadStatus = errors.New("unexpected http status")
	// ErrMissingVersion is returned when the manifest lacks the version field.
	ErrMissingVersion = errors.New("manifest has no version field")
	// ErrArtifactTooLarge is returned when the archive exceeds the configured cap.
	ErrArtifactTooLarge = errors.New("artifact exceeds size limit")
)

// Source fetches the version manifest and release artifacts over HTTP.
// A single failure is surfaced as-is; retry policy belongs to callers.
type Source struct {
	// client performs the requests with the configured timeout.
	client *http.Client
	// manifestURL is the endpoint serving the manifest JSON.
	manifestURL string
	// maxArtifactSize caps the downloaded artifact in bytes.
	maxArtifactSize int64
}

// New builds a Source from the updater configuration.
func New(cfg *config.Config) *Source {
	return &Source{
		client:          &http.Client{Timeout: cfg.Timeout},
		manifestURL:     cfg.ManifestURL,
		maxArtifactSize: cfg.MaxArtifactSize,
	}
}

// FetchManifest downloads and parses the remote version manifest.
func (s *Source) FetchManifest(ctx context.Context) (*release.Manifest, error) {
	body, err := s.get(ctx, s.manifestURL, 0)
	if err != nil {
		return nil, err
	}

	var manifest release.Manifest
	if err = json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if manifest.Version == "" {
		return nil, ErrMissingVersion
	}

	return &manifest, nil
}

// FetchArtifact downloads the release archive into memory, enforcing the
// configured size cap.
func (s *Source) FetchArtifact(ctx context.Context, url string) ([]byte, error) {
	logger.InfoKV(ctx, "Downloading release artifact", "url", url)

	return s.get(ctx, url, s.maxArtifactSize)
}

// get performs a GET request and reads the full body. A positive limit caps
// the number of accepted body bytes.
func (s *Source) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", url, response.Status, ErrBadStatus)
	}

	reader := response.Body
	if limit > 0 {
		// Read one extra byte so an exactly-at-limit body still succeeds.
		reader = io.NopCloser(io.LimitReader(response.Body, limit+1))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("%s: limit %d bytes: %w", url, limit, ErrArtifactTooLarge)
	}

	return body, nil
}
