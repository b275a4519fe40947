package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/adamancini/alfredwf/alfred"
	"github.com/adamancini/alfredwf/internal/output"
	"github.com/adamancini/alfredwf/updater"
)

// envGitHubToken is read when the config file does not set update.token.
const envGitHubToken = "GITHUB_TOKEN"

// alertIcon is the system stop icon shown on error items.
const alertIcon = "/System/Library/CoreServices/CoreTypes.bundle/Contents/Resources/AlertStopIcon.icns"

var errNoRepo = errors.New("no repository configured: pass --repo or set update.repo in the config file")

// projectName returns the release repository, preferring the --repo flag.
func (o *rootOptions) projectName() string {
	if o.repo != "" {
		return o.repo
	}
	return o.cfg.Update.Repo
}

// releaser builds the GitHub releaser from the config file.
func (o *rootOptions) releaser() *updater.GitHubReleaser {
	r := updater.NewGitHubReleaser()
	if o.cfg.Update.APIURL != "" {
		r = r.WithBaseURL(o.cfg.Update.APIURL)
	}

	token := o.cfg.Update.Token
	if token == "" {
		token, _ = o.environ.Lookup(envGitHubToken)
	}
	if token != "" {
		r = r.WithToken(token)
	}

	if o.client != nil {
		r = r.WithHTTPClient(o.client)
	}
	return r
}

// newUpdater builds an Updater for the resolved environment. Commands that
// only touch local state pass requireRepo=false.
func (o *rootOptions) newUpdater(requireRepo bool) (*updater.Updater, error) {
	project := o.projectName()
	if requireRepo && project == "" {
		return nil, errNoRepo
	}

	opts := []updater.Option{updater.WithLogger(o.logger)}
	if o.client != nil {
		opts = append(opts, updater.WithHTTPClient(o.client))
	}

	u, err := updater.New(project, o.releaser(), o.env.Provider(), opts...)
	if err != nil {
		return nil, err
	}

	if iv := o.cfg.Update.Interval; iv != nil && *iv != u.State().UpdateInterval {
		if err := u.SetInterval(*iv); err != nil {
			return nil, err
		}
		o.logger.Debug("applied interval from config", slog.Int64("seconds", *iv))
	}
	return u, nil
}

// scriptFilter reports whether output goes to Alfred rather than a person.
func (o *rootOptions) scriptFilter() bool {
	return o.format == output.FormatAlfred || o.format == output.FormatXML
}

// fail returns err for terminal output. For script filter output it logs err
// and shows it to the user as a single non-actionable item instead, since
// Alfred discards a failing script's stdout.
func (o *rootOptions) fail(err error) error {
	if !o.scriptFilter() {
		return err
	}
	o.logger.Error("command failed", slog.Any("error", err))
	if werr := o.out.Write(errorItem(err)); werr != nil {
		return fmt.Errorf("%w (writing error item: %v)", err, werr)
	}
	return nil
}

func errorItem(err error) alfred.Item {
	title := "Update check failed"
	switch updater.KindOf(err) {
	case updater.ErrConfigMissing:
		title = "Workflow is not configured for updates"
	case updater.ErrNetwork:
		title = "Could not reach the release server"
	case updater.ErrNoDownloadAsset:
		title = "Latest release has no workflow file"
	case updater.ErrNoReleaseData:
		title = "No release information available"
	}
	if errors.Is(err, errNoRepo) {
		title = "Workflow is not configured for updates"
	}
	return alfred.NewBuilder(title).
		Subtitle(err.Error()).
		TextLargeType(err.Error()).
		IconPath(alertIcon).
		Valid(false).
		Item()
}
