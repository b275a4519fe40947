package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/alfredwf/alfred"
)

type downloadResult struct {
	Path string `json:"path" yaml:"path"`
}

func (r downloadResult) String() string {
	return r.Path
}

func (r downloadResult) Items() []alfred.Item {
	return []alfred.Item{
		alfred.NewBuilder("Install downloaded workflow update").
			Subtitle(r.Path).
			Arg(r.Path).
			Type(alfred.TypeFile).
			IconFile(r.Path).
			Item(),
	}
}

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download the latest release bundle into the workflow cache",
		Long: `Download the latest release bundle into the workflow cache and print its path.

Pass the path to an Open File action and Alfred installs the update.
An .alfred3workflow asset is preferred over an .alfredworkflow one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.newUpdater(true)
			if err != nil {
				return opts.fail(err)
			}
			path, err := u.DownloadLatest(cmd.Context())
			if err != nil {
				return opts.fail(err)
			}
			return opts.out.Write(downloadResult{Path: path})
		},
	}
}
