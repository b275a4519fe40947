package cmd

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/adamancini/alfredwf/alfred"
	"github.com/adamancini/alfredwf/internal/output"
	"github.com/adamancini/alfredwf/updater"
)

type statusResult struct {
	Repo           string `json:"repo,omitempty" yaml:"repo,omitempty"`
	CurrentVersion string `json:"current_version" yaml:"current_version"`
	LastCheck      string `json:"last_check,omitempty" yaml:"last_check,omitempty"`
	IntervalSecs   int64  `json:"update_interval" yaml:"update_interval"`
	DueToCheck     bool   `json:"due_to_check" yaml:"due_to_check"`
	StatePath      string `json:"state_path" yaml:"state_path"`
	ConfigPath     string `json:"config_path,omitempty" yaml:"config_path,omitempty"`
}

func (r statusResult) Fields() []output.Field {
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	return []output.Field{
		{Key: "Repository", Value: orDash(r.Repo)},
		{Key: "Current version", Value: r.CurrentVersion},
		{Key: "Last check", Value: describeLastCheck(r.LastCheck, true)},
		{Key: "Update interval", Value: updater.IntervalDuration(r.IntervalSecs).String()},
		{Key: "Due to check", Value: yesNo(r.DueToCheck)},
		{Key: "State file", Value: r.StatePath},
		{Key: "Config file", Value: orDash(r.ConfigPath)},
	}
}

func (r statusResult) Items() []alfred.Item {
	return []alfred.Item{
		alfred.NewBuilder("Version " + r.CurrentVersion).
			Subtitle("Last checked " + describeLastCheck(r.LastCheck, false) + ", every " + strconv.FormatInt(r.IntervalSecs, 10) + "s").
			TextCopy(r.CurrentVersion).
			Valid(false).
			Item(),
		alfred.NewBuilder("State file").
			Subtitle(r.StatePath).
			Arg(r.StatePath).
			Type(alfred.TypeFileSkipCheck).
			QuicklookURL(r.StatePath).
			Item(),
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show saved update state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.newUpdater(false)
			if err != nil {
				return opts.fail(err)
			}
			return opts.out.Write(newStatusResult(opts, u))
		},
	}
}

func newStatusResult(opts *rootOptions, u *updater.Updater) statusResult {
	st := u.State()
	return statusResult{
		Repo:           u.Project(),
		CurrentVersion: st.CurrentVersion.String(),
		LastCheck:      formatLastCheck(u),
		IntervalSecs:   st.UpdateInterval,
		DueToCheck:     u.DueToCheck(),
		StatePath:      u.StatePath(),
		ConfigPath:     opts.cfg.Path,
	}
}

func formatLastCheck(u *updater.Updater) string {
	t, ok := u.LastCheck()
	if !ok {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// describeLastCheck renders an RFC 3339 check time relative to now, with the
// absolute time appended when withTimestamp is set.
func describeLastCheck(rfc string, withTimestamp bool) string {
	if rfc == "" {
		return "never"
	}
	t, err := time.Parse(time.RFC3339, rfc)
	if err != nil {
		return rfc
	}
	if withTimestamp {
		return rfc + " (" + humanize.Time(t) + ")"
	}
	return humanize.Time(t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
