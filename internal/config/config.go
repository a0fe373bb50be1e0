package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the update endpoints and install parameters for the updater.
type Config struct {
	// Owner is the GitHub account hosting the release repository.
	Owner string `yaml:"owner"`
	// Repo is the GitHub repository name.
	Repo string `yaml:"repo"`
	// Branch is the branch whose head is published as the release.
	Branch string `yaml:"branch"`
	// ManifestURL is the endpoint serving the version manifest JSON.
	// When empty it is derived from Owner/Repo/Branch.
	ManifestURL string `yaml:"manifest_url"`
	// ArchiveURL is the fallback location of the release archive, used when
	// the manifest itself does not carry one. When empty it is derived from
	// Owner/Repo/Branch.
	ArchiveURL string `yaml:"archive_url"`
	// TargetDir is the install directory the archive is applied to.
	TargetDir string `yaml:"target_dir"`
	// Timeout bounds each network operation.
	Timeout time.Duration `yaml:"timeout"`
	// MaxArtifactSize caps the downloaded archive size in bytes.
	MaxArtifactSize int64 `yaml:"max_artifact_size"`
	// ManagedExecutables lists process names terminated before files are
	// overwritten. The updater's own process is never touched.
	ManagedExecutables []string `yaml:"managed_executables"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "self-updater-settings.yaml"

	// DefaultBranch is the branch used when none is configured.
	DefaultBranch = "main"

	// DefaultTimeout bounds manifest and artifact requests.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxArtifactSize caps in-memory downloads at 512 MiB.
	DefaultMaxArtifactSize int64 = 512 << 20

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEndpointRequired is returned when neither an explicit manifest URL
	// nor an owner/repo pair is configured.
	errEndpointRequired = errors.New("manifest URL or owner and repo must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields, fills defaults and derives the GitHub
// endpoints when explicit URLs are absent.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ManifestURL == "" && (cfg.Owner == "" || cfg.Repo == "") {
		return errEndpointRequired
	}

	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}

	if cfg.ManifestURL == "" {
		cfg.ManifestURL = fmt.Sprintf(
			"https://raw.githubusercontent.com/%s/%s/%s/version.json",
			cfg.Owner, cfg.Repo, cfg.Branch)
	}

	if cfg.ArchiveURL == "" && cfg.Owner != "" && cfg.Repo != "" {
		cfg.ArchiveURL = fmt.Sprintf(
			"https://github.com/%s/%s/archive/refs/heads/%s.zip",
			cfg.Owner, cfg.Repo, cfg.Branch)
	}

	if _, err := url.ParseRequestURI(cfg.ManifestURL); err != nil {
		return fmt.Errorf("invalid manifest URL: %w", err)
	}

	if cfg.ArchiveURL != "" {
		if _, err := url.ParseRequestURI(cfg.ArchiveURL); err != nil {
			return fmt.Errorf("invalid archive URL: %w", err)
		}
	}

	if cfg.TargetDir == "" {
		cfg.TargetDir = "."
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.MaxArtifactSize <= 0 {
		cfg.MaxArtifactSize = DefaultMaxArtifactSize
	}

	return nil
}
