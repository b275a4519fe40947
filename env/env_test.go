package env

import (
	"path/filepath"
	"testing"
)

func TestAccessors(t *testing.T) {
	e := New(Map{
		KeyPreferences:              "/Users/me/Alfred.alfredpreferences",
		KeyPreferencesLocalHash:     "adbd4f66bc3ae8493832af61a41ee609b20d8705",
		KeyTheme:                    "alfred.theme.yosemite",
		KeyThemeBackground:          "rgba(255,255,255,0.98)",
		KeyThemeSelectionBackground: "rgba(255,255,255,0.98)",
		KeyThemeSubtext:             "3",
		KeyVersion:                  "5.5",
		KeyVersionBuild:             "2257",
		KeyWorkflowBundleID:         "com.example.tool",
		KeyWorkflowCache:            "/cache",
		KeyWorkflowData:             "/data",
		KeyWorkflowName:             "My Tool",
		KeyWorkflowUID:              "user.workflow.B0AC54EC",
		KeyWorkflowVersion:          "1.2.0",
		KeyDebug:                    "1",
	})

	strTests := []struct {
		name string
		get  func() (string, bool)
		want string
	}{
		{"Preferences", e.Preferences, "/Users/me/Alfred.alfredpreferences"},
		{"LocalPreferences", e.LocalPreferences, filepath.Join("/Users/me/Alfred.alfredpreferences", "preferences", "local", "adbd4f66bc3ae8493832af61a41ee609b20d8705")},
		{"Theme", e.Theme, "alfred.theme.yosemite"},
		{"ThemeBackground", e.ThemeBackground, "rgba(255,255,255,0.98)"},
		{"ThemeSelectionBackground", e.ThemeSelectionBackground, "rgba(255,255,255,0.98)"},
		{"Version", e.Version, "5.5"},
		{"WorkflowBundleID", e.WorkflowBundleID, "com.example.tool"},
		{"WorkflowCache", e.WorkflowCache, "/cache"},
		{"WorkflowData", e.WorkflowData, "/data"},
		{"WorkflowName", e.WorkflowName, "My Tool"},
		{"WorkflowUID", e.WorkflowUID, "user.workflow.B0AC54EC"},
		{"WorkflowVersion", e.WorkflowVersion, "1.2.0"},
	}
	for _, tt := range strTests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.get()
			if !ok || got != tt.want {
				t.Errorf("%s() = %q, %v, want %q", tt.name, got, ok, tt.want)
			}
		})
	}

	if build, ok := e.VersionBuild(); !ok || build != 2257 {
		t.Errorf("VersionBuild() = %d, %v", build, ok)
	}
	if st, ok := e.ThemeSubtext(); !ok || st != SubtextNever {
		t.Errorf("ThemeSubtext() = %v, %v", st, ok)
	}
	if !e.IsDebug() {
		t.Error("IsDebug() = false")
	}
}

func TestAbsentValues(t *testing.T) {
	e := New(Map{
		KeyWorkflowData: "",
		KeyVersionBuild: "not-a-number",
		KeyThemeSubtext: "7",
		KeyPreferences:  "/prefs",
		KeyDebug:        "0",
	})

	if _, ok := e.WorkflowData(); ok {
		t.Error("empty value should be reported as absent")
	}
	if _, ok := e.WorkflowUID(); ok {
		t.Error("missing value should be reported as absent")
	}
	if _, ok := e.VersionBuild(); ok {
		t.Error("non-numeric build should be absent")
	}
	if _, ok := e.ThemeSubtext(); ok {
		t.Error("out-of-range subtext should be absent")
	}
	if _, ok := e.LocalPreferences(); ok {
		t.Error("local preferences need the hash as well")
	}
	if e.IsDebug() {
		t.Error("IsDebug() should only be true for 1")
	}
}

func TestThemeSubtextValues(t *testing.T) {
	tests := []struct {
		raw  string
		want Subtext
		name string
	}{
		{"0", SubtextAlways, "always"},
		{"1", SubtextAlternativeActions, "alternative actions"},
		{"2", SubtextSelectedResult, "selected result"},
		{"3", SubtextNever, "never"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := New(Map{KeyThemeSubtext: tt.raw}).ThemeSubtext()
			if !ok || got != tt.want {
				t.Errorf("ThemeSubtext() = %v, %v, want %v", got, ok, tt.want)
			}
			if got.String() != tt.name {
				t.Errorf("String() = %q, want %q", got.String(), tt.name)
			}
		})
	}
}

func TestLayered(t *testing.T) {
	l := Layered{
		Map{KeyWorkflowUID: "override"},
		nil,
		Map{KeyWorkflowUID: "base", KeyWorkflowName: "Base Name"},
	}

	if v, _ := l.Lookup(KeyWorkflowUID); v != "override" {
		t.Errorf("Lookup(uid) = %q, want first layer", v)
	}
	if v, _ := l.Lookup(KeyWorkflowName); v != "Base Name" {
		t.Errorf("Lookup(name) = %q, want fallback layer", v)
	}
	if _, ok := l.Lookup(KeyTheme); ok {
		t.Error("Lookup(theme) should miss")
	}
}

func TestOSProvider(t *testing.T) {
	t.Setenv(KeyWorkflowUID, "from-process")

	if v, ok := New(nil).WorkflowUID(); !ok || v != "from-process" {
		t.Errorf("WorkflowUID() = %q, %v", v, ok)
	}
}
