// Package updater lets an Alfred workflow check a release host for newer
// versions of itself and download the new bundle.
//
// An Updater checks at most once per interval (24 hours by default). The
// very first check after installation never reports an update, since the
// workflow is assumed to have just been downloaded. State is kept in the
// workflow data directory as <uid>-<name>-updater.json and downloads land in
// the workflow cache directory as latest_release_<uid>.<ext>.
//
// Typical use from a script filter:
//
//	u, err := updater.GitHub("owner/repo", env.OS)
//	if err != nil {
//		return err
//	}
//	ready, err := u.UpdateReady(ctx)
//	if err != nil {
//		return err
//	}
//	if ready {
//		path, err := u.DownloadLatest(ctx)
//		...
//	}
//
// Connect the downloaded path to an Open File action so Alfred installs it.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/adamancini/alfredwf/env"
	"github.com/adamancini/alfredwf/internal/logging"
)

// Updater decides when to consult a Releaser and persists what it learns.
// It is not safe for concurrent use.
type Updater struct {
	project  string
	releaser Releaser
	env      *env.Env

	uid        string
	store      *Store
	statusPath string
	state      *State

	// latest is nil until release metadata has been fetched in this process.
	latest *Release

	downloader *HTTPDownloader
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an Updater.
type Option func(*Updater)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Updater) {
		u.logger = logging.NewComponentLogger(logger, "updater")
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) {
		if now != nil {
			u.now = now
		}
	}
}

// WithHTTPClient sets the client used for bundle downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(u *Updater) {
		u.downloader = NewHTTPDownloader(client)
	}
}

// GitHub creates an Updater for a workflow released on github.com under
// repo ("owner/name").
func GitHub(repo string, p env.Provider, opts ...Option) (*Updater, error) {
	return New(repo, NewGitHubReleaser(), p, opts...)
}

// New loads the saved state for the workflow described by p, or creates and
// saves fresh state if none exists. The workflow data directory and UID must
// be set.
func New(project string, releaser Releaser, p env.Provider, opts ...Option) (*Updater, error) {
	u := &Updater{
		project:    project,
		releaser:   releaser,
		env:        env.New(p),
		downloader: NewHTTPDownloader(nil),
		now:        time.Now,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}

	dataDir, ok := u.env.WorkflowData()
	if !ok {
		return nil, &Error{Kind: ErrConfigMissing, Op: "locate state", Err: fmt.Errorf("missing env variable %s", env.KeyWorkflowData)}
	}
	uid, ok := u.env.WorkflowUID()
	if !ok {
		return nil, &Error{Kind: ErrConfigMissing, Op: "locate state", Err: fmt.Errorf("missing env variable %s", env.KeyWorkflowUID)}
	}
	name, _ := u.env.WorkflowName()

	u.uid = uid
	u.store = NewStore(StatePath(dataDir, uid, name))
	u.statusPath = filepath.Join(dataDir, CheckStatusFile)

	if err := u.loadOrInit(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Updater) loadOrInit() error {
	st, err := u.store.Load()
	if err == nil {
		u.state = st
		u.logger.Debug("loaded updater state",
			slog.String("path", u.store.Path()),
			slog.String("version", st.CurrentVersion.String()))
		return nil
	}
	if !IsNotExist(err) {
		u.logger.Warn("discarding unreadable updater state",
			slog.String("path", u.store.Path()),
			slog.Any("error", err))
	}

	version := Version{}
	if declared, ok := u.env.WorkflowVersion(); ok {
		version, err = ParseVersion(declared)
		if err != nil {
			return err
		}
	}
	u.state = NewState(version)
	return u.save()
}

func (u *Updater) save() error {
	return u.store.Save(u.state)
}

// Project returns the release project this updater checks.
func (u *Updater) Project() string {
	return u.project
}

// StatePath returns the path of the persisted state file.
func (u *Updater) StatePath() string {
	return u.store.Path()
}

// State returns a copy of the current state.
func (u *Updater) State() State {
	st := *u.state
	if st.LastCheck != nil {
		t := *st.LastCheck
		st.LastCheck = &t
	}
	return st
}

// CurrentVersion returns the version the workflow believes itself to be.
func (u *Updater) CurrentVersion() Version {
	return u.state.CurrentVersion
}

// LastCheck returns the time of the last recorded check.
func (u *Updater) LastCheck() (time.Time, bool) {
	if u.state.LastCheck == nil {
		return time.Time{}, false
	}
	return *u.state.LastCheck, true
}

// Interval returns the check interval.
func (u *Updater) Interval() time.Duration {
	return u.state.Interval()
}

// SetVersion sets the current version and saves the state.
func (u *Updater) SetVersion(v string) error {
	version, err := ParseVersion(v)
	if err != nil {
		return err
	}
	u.state.CurrentVersion = version
	return u.save()
}

// SetInterval sets the check interval in seconds and saves the state. Zero or
// negative values make every call to UpdateReady hit the releaser.
func (u *Updater) SetInterval(seconds int64) error {
	u.state.UpdateInterval = seconds
	return u.save()
}

// DueToCheck reports whether the interval since the last check has elapsed.
func (u *Updater) DueToCheck() bool {
	return u.state.DueAt(u.now())
}

// UpdateReady reports whether a newer release is available.
//
// The first call for a fresh installation only records the time and returns
// false. Within the interval the answer comes from the cached result of the
// last check. Once the interval has elapsed, or the cached result cannot be
// read, the releaser is consulted. The check time and a readable status
// record are kept even when that remote check fails, so a failing endpoint is
// retried only once per interval.
func (u *Updater) UpdateReady(ctx context.Context) (bool, error) {
	if u.state.LastCheck == nil {
		u.logger.Debug("first run, skipping remote check")
		u.state.Touch(u.now())
		if err := u.save(); err != nil {
			return false, err
		}
		return false, nil
	}

	if !u.DueToCheck() {
		status, err := readCheckStatus(u.statusPath)
		if err == nil {
			return u.readyFrom(status), nil
		}
		u.logger.Debug("cached check status unusable, checking remote",
			slog.String("path", u.statusPath),
			slog.Any("error", err))
	}

	return u.checkRemote(ctx)
}

func (u *Updater) readyFrom(status *CheckStatus) bool {
	if status.Version == nil {
		return false
	}
	return u.state.CurrentVersion.IsLessThan(*status.Version)
}

func (u *Updater) checkRemote(ctx context.Context) (bool, error) {
	release, err := u.releaser.Latest(ctx, u.project)
	if err != nil {
		u.recordFailedCheck()
		return false, err
	}

	u.latest = release

	ready := u.state.CurrentVersion.IsLessThan(release.Version)
	status := CheckStatus{UpdateReady: ready}
	if ready {
		v := release.Version
		status.Version = &v
	}
	if err := writeCheckStatus(u.statusPath, status); err != nil {
		return false, err
	}

	u.state.Touch(u.now())
	if err := u.save(); err != nil {
		return false, err
	}

	u.logger.Info("checked for update",
		slog.String("project", u.project),
		slog.String("current", u.state.CurrentVersion.String()),
		slog.String("latest", release.Version.String()),
		slog.Bool("update_ready", ready))
	return ready, nil
}

// recordFailedCheck advances the check time after a failed remote check. An
// unreadable status record is replaced with a "no update" record so calls
// within the interval answer from the cache instead of retrying the releaser.
func (u *Updater) recordFailedCheck() {
	if _, err := readCheckStatus(u.statusPath); err != nil {
		if werr := writeCheckStatus(u.statusPath, CheckStatus{}); werr != nil {
			u.logger.Warn("failed to record check status", slog.Any("error", werr))
		}
	}
	u.state.Touch(u.now())
	if err := u.save(); err != nil {
		u.logger.Warn("failed to record check time", slog.Any("error", err))
	}
}

// AvailableVersion returns the newer version recorded by the last successful
// check, without contacting the releaser.
func (u *Updater) AvailableVersion() (Version, bool) {
	if u.latest != nil {
		if u.state.CurrentVersion.IsLessThan(u.latest.Version) {
			return u.latest.Version, true
		}
		return Version{}, false
	}
	status, err := readCheckStatus(u.statusPath)
	if err != nil || !u.readyFrom(status) {
		return Version{}, false
	}
	return *status.Version, true
}

// fetchLatest returns the release metadata held by this process, asking the
// releaser only if no check has fetched it yet.
func (u *Updater) fetchLatest(ctx context.Context) (*Release, error) {
	if u.latest != nil {
		return u.latest, nil
	}
	release, err := u.releaser.Latest(ctx, u.project)
	if err != nil {
		return nil, err
	}
	u.latest = release
	return release, nil
}

// LatestRelease returns the latest release, fetching it if this updater has
// not done so yet.
func (u *Updater) LatestRelease(ctx context.Context) (*Release, error) {
	return u.fetchLatest(ctx)
}

// DownloadPath returns where DownloadLatest stores a bundle with the given
// extension ("alfredworkflow" or "alfred3workflow").
func (u *Updater) DownloadPath(ext string) (string, error) {
	cacheDir, ok := u.env.WorkflowCache()
	if !ok {
		return "", &Error{Kind: ErrConfigMissing, Op: "locate download", Err: fmt.Errorf("missing env variable %s", env.KeyWorkflowCache)}
	}
	return filepath.Join(cacheDir, "latest_release_"+u.uid+"."+ext), nil
}

// DownloadLatest downloads the latest release bundle into the workflow cache
// directory and returns its path. Any earlier download at that path is
// replaced.
func (u *Updater) DownloadLatest(ctx context.Context) (string, error) {
	release, err := u.fetchLatest(ctx)
	if err != nil {
		return "", err
	}
	asset, err := release.InstallableAsset()
	if err != nil {
		return "", err
	}
	dst, err := u.DownloadPath(asset.Extension())
	if err != nil {
		return "", err
	}

	n, err := u.downloader.Download(ctx, asset.URL, dst)
	if err != nil {
		return "", err
	}
	u.logger.Info("downloaded release",
		slog.String("version", release.Version.String()),
		slog.String("asset", asset.Name),
		slog.String("path", dst),
		slog.Int64("bytes", n))
	return dst, nil
}
