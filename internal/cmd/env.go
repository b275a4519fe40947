package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adamancini/alfredwf/alfred"
	"github.com/adamancini/alfredwf/env"
	"github.com/adamancini/alfredwf/internal/output"
)

type envResult struct {
	AlfredVersion            string `json:"alfred_version,omitempty" yaml:"alfred_version,omitempty"`
	AlfredBuild              int    `json:"alfred_version_build,omitempty" yaml:"alfred_version_build,omitempty"`
	Preferences              string `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	LocalPreferences         string `json:"local_preferences,omitempty" yaml:"local_preferences,omitempty"`
	Theme                    string `json:"theme,omitempty" yaml:"theme,omitempty"`
	ThemeBackground          string `json:"theme_background,omitempty" yaml:"theme_background,omitempty"`
	ThemeSelectionBackground string `json:"theme_selection_background,omitempty" yaml:"theme_selection_background,omitempty"`
	ThemeSubtext             string `json:"theme_subtext,omitempty" yaml:"theme_subtext,omitempty"`
	BundleID                 string `json:"workflow_bundleid,omitempty" yaml:"workflow_bundleid,omitempty"`
	UID                      string `json:"workflow_uid,omitempty" yaml:"workflow_uid,omitempty"`
	Name                     string `json:"workflow_name,omitempty" yaml:"workflow_name,omitempty"`
	Version                  string `json:"workflow_version,omitempty" yaml:"workflow_version,omitempty"`
	DataDir                  string `json:"workflow_data,omitempty" yaml:"workflow_data,omitempty"`
	CacheDir                 string `json:"workflow_cache,omitempty" yaml:"workflow_cache,omitempty"`
	Debug                    bool   `json:"debug" yaml:"debug"`
}

func collectEnv(e *env.Env) envResult {
	get := func(f func() (string, bool)) string {
		v, _ := f()
		return v
	}
	r := envResult{
		AlfredVersion:            get(e.Version),
		Preferences:              get(e.Preferences),
		LocalPreferences:         get(e.LocalPreferences),
		Theme:                    get(e.Theme),
		ThemeBackground:          get(e.ThemeBackground),
		ThemeSelectionBackground: get(e.ThemeSelectionBackground),
		BundleID:                 get(e.WorkflowBundleID),
		UID:                      get(e.WorkflowUID),
		Name:                     get(e.WorkflowName),
		Version:                  get(e.WorkflowVersion),
		DataDir:                  get(e.WorkflowData),
		CacheDir:                 get(e.WorkflowCache),
		Debug:                    e.IsDebug(),
	}
	if build, ok := e.VersionBuild(); ok {
		r.AlfredBuild = build
	}
	if st, ok := e.ThemeSubtext(); ok {
		r.ThemeSubtext = st.String()
	}
	return r
}

func (r envResult) Fields() []output.Field {
	build := ""
	if r.AlfredBuild != 0 {
		build = strconv.Itoa(r.AlfredBuild)
	}
	pairs := []output.Field{
		{Key: env.KeyVersion, Value: r.AlfredVersion},
		{Key: env.KeyVersionBuild, Value: build},
		{Key: env.KeyPreferences, Value: r.Preferences},
		{Key: "local preferences", Value: r.LocalPreferences},
		{Key: env.KeyTheme, Value: r.Theme},
		{Key: env.KeyThemeBackground, Value: r.ThemeBackground},
		{Key: env.KeyThemeSelectionBackground, Value: r.ThemeSelectionBackground},
		{Key: env.KeyThemeSubtext, Value: r.ThemeSubtext},
		{Key: env.KeyWorkflowBundleID, Value: r.BundleID},
		{Key: env.KeyWorkflowUID, Value: r.UID},
		{Key: env.KeyWorkflowName, Value: r.Name},
		{Key: env.KeyWorkflowVersion, Value: r.Version},
		{Key: env.KeyWorkflowData, Value: r.DataDir},
		{Key: env.KeyWorkflowCache, Value: r.CacheDir},
		{Key: env.KeyDebug, Value: yesNo(r.Debug)},
	}
	for i := range pairs {
		if pairs[i].Value == "" {
			pairs[i].Value = "-"
		}
	}
	return pairs
}

func (r envResult) Items() []alfred.Item {
	fields := r.Fields()
	items := make([]alfred.Item, 0, len(fields))
	for _, f := range fields {
		items = append(items, alfred.NewBuilder(f.Value).
			Subtitle(f.Key).
			UID(f.Key).
			TextCopy(f.Value).
			Valid(false).
			Item())
	}
	return items
}

func newEnvCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the workflow environment as Alfred and the config file provide it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.out.Write(collectEnv(opts.env))
		},
	}
}
