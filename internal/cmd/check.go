package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/alfredwf/alfred"
	"github.com/adamancini/alfredwf/internal/output"
)

// updateKeyword is the autocomplete text and arg of the "update available"
// item; connect it to a workflow action that runs `alfredwf download`.
const updateKeyword = "workflow:update"

type checkResult struct {
	UpdateReady    bool   `json:"update_ready" yaml:"update_ready"`
	CurrentVersion string `json:"current_version" yaml:"current_version"`
	LatestVersion  string `json:"latest_version,omitempty" yaml:"latest_version,omitempty"`
	LastCheck      string `json:"last_check,omitempty" yaml:"last_check,omitempty"`
}

func (r checkResult) Fields() []output.Field {
	latest := r.LatestVersion
	if latest == "" {
		latest = "-"
	}
	return []output.Field{
		{Key: "Update ready", Value: yesNo(r.UpdateReady)},
		{Key: "Current version", Value: r.CurrentVersion},
		{Key: "Latest version", Value: latest},
		{Key: "Last check", Value: describeLastCheck(r.LastCheck, true)},
	}
}

func (r checkResult) Items() []alfred.Item {
	if r.UpdateReady {
		title := "Workflow update available"
		if r.LatestVersion != "" {
			title = "Workflow update available: v" + r.LatestVersion
		}
		return []alfred.Item{
			alfred.NewBuilder(title).
				Subtitle("Installed v" + r.CurrentVersion + ". Press enter to download and install").
				UID("alfredwf-update").
				Arg(updateKeyword).
				Autocomplete(updateKeyword).
				Item(),
		}
	}
	return []alfred.Item{
		alfred.NewBuilder("Workflow is up to date").
			Subtitle("Installed v" + r.CurrentVersion).
			Valid(false).
			Item(),
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether a newer workflow release is available",
		Long: `Check whether a newer workflow release is available.

The release server is contacted at most once per update interval. The very
first check after installation records the time and reports no update.

Examples:
  alfredwf check --repo owner/workflow            # Human readable result
  alfredwf check --repo owner/workflow -o alfred  # Script filter JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *rootOptions) error {
	u, err := opts.newUpdater(true)
	if err != nil {
		return opts.fail(err)
	}

	ready, err := u.UpdateReady(cmd.Context())
	if err != nil {
		return opts.fail(err)
	}

	result := checkResult{
		UpdateReady:    ready,
		CurrentVersion: u.CurrentVersion().String(),
		LastCheck:      formatLastCheck(u),
	}
	if v, ok := u.AvailableVersion(); ok {
		result.LatestVersion = v.String()
	}
	return opts.out.Write(result)
}
