// Package env reads the script environment Alfred sets for a running
// workflow. Values come from a Provider so callers and tests never have to
// touch the real process environment.
//
// See https://www.alfredapp.com/help/workflows/script-environment-variables/
package env

import (
	"os"
	"path/filepath"
	"strconv"
)

// Variable names set by Alfred.
const (
	KeyPreferences              = "alfred_preferences"
	KeyPreferencesLocalHash     = "alfred_preferences_localhash"
	KeyTheme                    = "alfred_theme"
	KeyThemeBackground          = "alfred_theme_background"
	KeyThemeSelectionBackground = "alfred_theme_selection_background"
	KeyThemeSubtext             = "alfred_theme_subtext"
	KeyVersion                  = "alfred_version"
	KeyVersionBuild             = "alfred_version_build"
	KeyWorkflowBundleID         = "alfred_workflow_bundleid"
	KeyWorkflowCache            = "alfred_workflow_cache"
	KeyWorkflowData             = "alfred_workflow_data"
	KeyWorkflowName             = "alfred_workflow_name"
	KeyWorkflowUID              = "alfred_workflow_uid"
	KeyWorkflowVersion          = "alfred_workflow_version"
	KeyDebug                    = "alfred_debug"
)

// Provider looks up configuration values by key.
type Provider interface {
	Lookup(key string) (string, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(key string) (string, bool)

// Lookup implements Provider.
func (f ProviderFunc) Lookup(key string) (string, bool) {
	return f(key)
}

// OS reads the process environment.
var OS Provider = ProviderFunc(os.LookupEnv)

// Map is a fixed set of values, mostly useful in tests.
type Map map[string]string

// Lookup implements Provider.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Layered consults providers in order and returns the first hit.
type Layered []Provider

// Lookup implements Provider.
func (l Layered) Lookup(key string) (string, bool) {
	for _, p := range l {
		if p == nil {
			continue
		}
		if v, ok := p.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Subtext is the subtext mode chosen in Alfred's Appearance preferences.
type Subtext int

const (
	SubtextAlways Subtext = iota
	SubtextAlternativeActions
	SubtextSelectedResult
	SubtextNever
)

func (s Subtext) String() string {
	switch s {
	case SubtextAlways:
		return "always"
	case SubtextAlternativeActions:
		return "alternative actions"
	case SubtextSelectedResult:
		return "selected result"
	case SubtextNever:
		return "never"
	default:
		return "unknown"
	}
}

// Env exposes typed accessors over a Provider.
type Env struct {
	p Provider
}

// New wraps p. A nil provider reads the process environment.
func New(p Provider) *Env {
	if p == nil {
		p = OS
	}
	return &Env{p: p}
}

// Provider returns the underlying provider.
func (e *Env) Provider() Provider {
	return e.p
}

func (e *Env) get(key string) (string, bool) {
	v, ok := e.p.Lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Preferences returns the location of Alfred.alfredpreferences.
func (e *Env) Preferences() (string, bool) {
	return e.get(KeyPreferences)
}

// LocalPreferences returns the Mac-specific preferences directory,
// <preferences>/preferences/local/<hash>.
func (e *Env) LocalPreferences() (string, bool) {
	prefs, ok := e.Preferences()
	if !ok {
		return "", false
	}
	hash, ok := e.get(KeyPreferencesLocalHash)
	if !ok {
		return "", false
	}
	return filepath.Join(prefs, "preferences", "local", hash), true
}

// Theme returns the current theme, e.g. "alfred.theme.yosemite".
func (e *Env) Theme() (string, bool) {
	return e.get(KeyTheme)
}

// ThemeBackground returns the theme background color string,
// e.g. "rgba(255,255,255,0.98)".
func (e *Env) ThemeBackground() (string, bool) {
	return e.get(KeyThemeBackground)
}

// ThemeSelectionBackground returns the selected-item background color string.
func (e *Env) ThemeSelectionBackground() (string, bool) {
	return e.get(KeyThemeSelectionBackground)
}

// ThemeSubtext returns the subtext mode.
func (e *Env) ThemeSubtext() (Subtext, bool) {
	v, _ := e.get(KeyThemeSubtext)
	switch v {
	case "0":
		return SubtextAlways, true
	case "1":
		return SubtextAlternativeActions, true
	case "2":
		return SubtextSelectedResult, true
	case "3":
		return SubtextNever, true
	default:
		return 0, false
	}
}

// Version returns Alfred's version, e.g. "3.2.1".
func (e *Env) Version() (string, bool) {
	return e.get(KeyVersion)
}

// VersionBuild returns Alfred's build number.
func (e *Env) VersionBuild() (int, bool) {
	v, ok := e.get(KeyVersionBuild)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// WorkflowBundleID returns the bundle ID of the running workflow.
func (e *Env) WorkflowBundleID() (string, bool) {
	return e.get(KeyWorkflowBundleID)
}

// WorkflowCache returns the directory for volatile workflow data. Alfred only
// sets it when the workflow has a bundle ID.
func (e *Env) WorkflowCache() (string, bool) {
	return e.get(KeyWorkflowCache)
}

// WorkflowData returns the directory for non-volatile workflow data. Alfred
// only sets it when the workflow has a bundle ID.
func (e *Env) WorkflowData() (string, bool) {
	return e.get(KeyWorkflowData)
}

// WorkflowName returns the name of the running workflow.
func (e *Env) WorkflowName() (string, bool) {
	return e.get(KeyWorkflowName)
}

// WorkflowUID returns the unique ID of the running workflow,
// e.g. "user.workflow.B0AC54EC-601C-479A-9428-01F9FD732959".
func (e *Env) WorkflowUID() (string, bool) {
	return e.get(KeyWorkflowUID)
}

// WorkflowVersion returns the version the workflow author declared.
func (e *Env) WorkflowVersion() (string, bool) {
	return e.get(KeyWorkflowVersion)
}

// IsDebug reports whether the workflow debug panel is open.
func (e *Env) IsDebug() bool {
	v, _ := e.get(KeyDebug)
	return v == "1"
}
