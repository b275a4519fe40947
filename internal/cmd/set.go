package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSetVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-version <version>",
		Short: "Record the installed workflow version",
		Long: `Record the installed workflow version in the saved state.

Run this after an update is installed so the next check compares against the
new version. The version must be semver without a leading "v".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.newUpdater(false)
			if err != nil {
				return opts.fail(err)
			}
			if err := u.SetVersion(args[0]); err != nil {
				return opts.fail(err)
			}
			return opts.out.Write(newStatusResult(opts, u))
		},
	}
}

func newSetIntervalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-interval <seconds>",
		Short: "Set how often the release server is checked",
		Long: `Set how often the release server is checked, in seconds.

An interval of 0 or less checks on every run. Pass negative values after "--":
  alfredwf set-interval -- -1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return opts.fail(fmt.Errorf("invalid interval %q: must be a whole number of seconds", args[0]))
			}
			u, err := opts.newUpdater(false)
			if err != nil {
				return opts.fail(err)
			}
			if err := u.SetInterval(seconds); err != nil {
				return opts.fail(err)
			}
			return opts.out.Write(newStatusResult(opts, u))
		},
	}
}
