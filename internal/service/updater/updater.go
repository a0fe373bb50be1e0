package updater

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/self-updater/internal/config"
	"github.com/oshokin/self-updater/internal/domain/release"
	"github.com/oshokin/self-updater/internal/logger"
	"github.com/oshokin/self-updater/internal/repository/record"
	"github.com/oshokin/self-updater/internal/service/installer"
	"github.com/oshokin/self-updater/internal/service/restart"
	"github.com/oshokin/self-updater/internal/service/source"
)

var (
	errNoUpdateAvailable = errors.New("no update available to install")
	errNoArtifactURL     = errors.New("no artifact URL in manifest or settings")
	errAlreadyRunning    = errors.New("an update is already running for this directory")
)

// Source fetches the remote manifest and release artifacts.
type Source interface {
	FetchManifest(ctx context.Context) (*release.Manifest, error)
	FetchArtifact(ctx context.Context, url string) ([]byte, error)
}

// Installer applies a release archive over the target directory.
type Installer interface {
	Install(ctx context.Context, archive []byte, targetDir string) error
}

// RestartFunc re-invokes the current executable. It does not return on success.
type RestartFunc func(ctx context.Context) error

// Updater orchestrates the check, update and force workflows for one target
// directory. It is synchronous and not safe for concurrent use; there is one
// in-flight update per process at most.
type Updater struct {
	cfg       *config.Config
	records   record.Repository
	source    Source
	installer Installer
	restart   RestartFunc

	// phase tracks the lifecycle position; failures return it to idle.
	phase release.Phase
	// manifest caches the result of the last successful check for Update.
	manifest *release.Manifest
}

// Option overrides a collaborator, mainly for tests.
type Option func(*Updater)

// WithRecords replaces the version record repository.
func WithRecords(r record.Repository) Option {
	return func(u *Updater) { u.records = r }
}

// WithSource replaces the manifest and artifact source.
func WithSource(s Source) Option {
	return func(u *Updater) { u.source = s }
}

// WithInstaller replaces the archive installer.
func WithInstaller(i Installer) Option {
	return func(u *Updater) { u.installer = i }
}

// WithRestart replaces the process restart primitive.
func WithRestart(fn RestartFunc) Option {
	return func(u *Updater) { u.restart = fn }
}

// New builds an Updater from validated configuration. Host applications embed
// it and call Check and Update before their main loop starts.
func New(cfg *config.Config, opts ...Option) *Updater {
	u := &Updater{
		cfg:       cfg,
		records:   record.NewFileRepository(cfg.TargetDir),
		source:    source.New(cfg),
		installer: installer.New(),
		restart:   restart.Self,
		phase:     release.PhaseIdle,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Phase returns the current lifecycle phase.
func (u *Updater) Phase() release.Phase {
	return u.phase
}

// Check reads the local version record, fetches the remote manifest and
// compares the two. On failure the updater returns to idle and the error is
// surfaced; the local record is never modified by a check.
func (u *Updater) Check(ctx context.Context) (*release.Decision, error) {
	u.phase = release.PhaseChecking
	u.manifest = nil

	localVersion := u.localVersion(ctx)

	manifest, err := u.source.FetchManifest(ctx)
	if err != nil {
		u.phase = release.PhaseIdle

		return &release.Decision{LocalVersion: localVersion}, fmt.Errorf("fetch manifest: %w", err)
	}

	decision := &release.Decision{
		Available:     release.IsNewer(manifest.Version, localVersion),
		LocalVersion:  localVersion,
		RemoteVersion: manifest.Version,
	}

	if decision.Available {
		u.manifest = manifest
		u.phase = release.PhaseUpdateAvailable

		logger.InfoKV(ctx, "Update available",
			"local", localVersion, "remote", manifest.Version)
	} else {
		u.phase = release.PhaseUpToDate

		logger.InfoKV(ctx, "System up to date", "version", localVersion)
	}

	return decision, nil
}

// Update installs the release found by the last Check and restarts. It is
// valid only when a check reported an available update. On any failure the
// updater returns to idle; files already written stay as they are.
func (u *Updater) Update(ctx context.Context) error {
	if !u.phase.CanInstall() || u.manifest == nil {
		return errNoUpdateAvailable
	}

	return u.install(ctx, u.manifest)
}

// Force fetches the manifest and installs its release unconditionally,
// skipping the version comparison, then restarts.
func (u *Updater) Force(ctx context.Context) error {
	logger.Info(ctx, "Forcing update")

	manifest, err := u.source.FetchManifest(ctx)
	if err != nil {
		u.phase = release.PhaseIdle

		return fmt.Errorf("fetch manifest: %w", err)
	}

	return u.install(ctx, manifest)
}

// Restart re-invokes the current executable without updating anything.
func (u *Updater) Restart(ctx context.Context) error {
	u.phase = release.PhaseRestarting

	if err := u.restart(ctx); err != nil {
		u.phase = release.PhaseIdle

		return fmt.Errorf("restart: %w", err)
	}

	return nil
}

// install downloads the artifact, applies it, persists the new version record
// and hands control to the restart primitive.
func (u *Updater) install(ctx context.Context, manifest *release.Manifest) error {
	u.phase = release.PhaseInstalling

	artifactURL := manifest.URL
	if artifactURL == "" {
		artifactURL = u.cfg.ArchiveURL
	}

	if artifactURL == "" {
		u.phase = release.PhaseIdle

		return errNoArtifactURL
	}

	if isUpdateRunningNow(ctx, u.cfg.TargetDir) {
		u.phase = release.PhaseIdle

		return errAlreadyRunning
	}

	if err := createMarker(u.cfg.TargetDir); err != nil {
		u.phase = release.PhaseIdle

		return fmt.Errorf("create update marker: %w", err)
	}

	defer removeMarker(u.cfg.TargetDir)

	archive, err := u.source.FetchArtifact(ctx, artifactURL)
	if err != nil {
		u.phase = release.PhaseIdle

		return fmt.Errorf("fetch artifact: %w", err)
	}

	if len(u.cfg.ManagedExecutables) > 0 {
		logger.Info(ctx, "Terminating managed processes before install")

		if err = terminateProcesses(u.cfg.ManagedExecutables); err != nil {
			u.phase = release.PhaseIdle

			return fmt.Errorf("terminate managed processes: %w", err)
		}
	}

	logger.InfoKV(ctx, "Installing release", "version", manifest.Version, "target", u.cfg.TargetDir)

	if err = u.installer.Install(ctx, archive, u.cfg.TargetDir); err != nil {
		u.phase = release.PhaseIdle

		return fmt.Errorf("install archive: %w", err)
	}

	if err = u.records.Save(ctx, &release.Record{Version: manifest.Version}); err != nil {
		u.phase = release.PhaseIdle

		return fmt.Errorf("save version record: %w", err)
	}

	logger.InfoKV(ctx, "Files updated successfully", "version", manifest.Version)

	// Exec replaces this process, so the deferred cleanup would never run.
	removeMarker(u.cfg.TargetDir)

	return u.Restart(ctx)
}

// localVersion reads the installed version, degrading to the sentinel when
// the record is absent or unreadable. A broken record is logged, not fatal.
func (u *Updater) localVersion(ctx context.Context) string {
	rec, err := u.records.Load(ctx)
	if err != nil {
		if !errors.Is(err, record.ErrNotFound) {
			logger.WarnKV(ctx, "Unable to read local version record", "error", err)
		} else {
			logger.Infof(ctx, "Local %s not found, assuming version %s",
				record.Filename, release.SentinelVersion)
		}

		return release.SentinelVersion
	}

	return rec.Version
}
