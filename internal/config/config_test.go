package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamancini/alfredwf/env"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFind(t *testing.T) {
	t.Run("nothing found is not an error", func(t *testing.T) {
		path, err := Find("", t.TempDir(), env.Map{})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if path != "" {
			t.Errorf("Find() = %q, want empty", path)
		}
	})

	t.Run("explicit path wins", func(t *testing.T) {
		dir := t.TempDir()
		explicit := filepath.Join(dir, "custom.yaml")
		writeFile(t, explicit, "update:\n  repo: a/b\n")
		writeFile(t, filepath.Join(dir, "alfredwf.toml"), "")

		vars := env.Map{EnvConfigPath: filepath.Join(dir, "alfredwf.toml")}

		path, err := Find(explicit, dir, vars)
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if path != explicit {
			t.Errorf("Find() = %q, want %q", path, explicit)
		}
	})

	t.Run("missing explicit path", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "nope.toml"), "", env.Map{})
		if err == nil || !strings.Contains(err.Error(), "specified config not found") {
			t.Errorf("Find() error = %v", err)
		}
	})

	t.Run("env var", func(t *testing.T) {
		dir := t.TempDir()
		p := filepath.Join(dir, "from-env.json")
		writeFile(t, p, "{}")
		path, err := Find("", t.TempDir(), env.Map{EnvConfigPath: p})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if path != p {
			t.Errorf("Find() = %q, want %q", path, p)
		}
	})

	t.Run("env var pointing nowhere", func(t *testing.T) {
		vars := env.Map{EnvConfigPath: filepath.Join(t.TempDir(), "gone.toml")}
		if _, err := Find("", t.TempDir(), vars); err == nil {
			t.Error("Find() expected error")
		}
	})

	t.Run("process environment is not consulted", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "from-process.toml")
		writeFile(t, p, "")
		t.Setenv(EnvConfigPath, p)

		path, err := Find("", t.TempDir(), env.Map{})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if path != "" {
			t.Errorf("Find() = %q, want empty", path)
		}
	})

	t.Run("toml preferred over yaml in dir", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "alfredwf.yaml"), "")
		writeFile(t, filepath.Join(dir, "alfredwf.toml"), "")

		path, err := Find("", dir, env.Map{})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if filepath.Base(path) != "alfredwf.toml" {
			t.Errorf("Find() = %q, want alfredwf.toml", path)
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "alfredwf.toml")
	writeFile(t, p, "[update]\nrepo = \"owner/name\"\ninterval = 60\n")

	cfg, err := Load(p, env.Map{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path != p {
		t.Errorf("Path = %q, want %q", cfg.Path, p)
	}
	if cfg.Update.Repo != "owner/name" {
		t.Errorf("Update.Repo = %q", cfg.Update.Repo)
	}
	if got := cfg.IntervalString(); got != "60s" {
		t.Errorf("IntervalString() = %q, want 60s", got)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "alfredwf.yaml")
	writeFile(t, p, "update:\n  api_url: ftp://example.com\n")

	if _, err := Load(p, env.Map{}); err == nil || !strings.Contains(err.Error(), "update.api_url") {
		t.Errorf("Load() error = %v, want api_url validation error", err)
	}
}

func TestLoadNegativeInterval(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "alfredwf.yaml")
	writeFile(t, p, "update:\n  interval: -10\n")

	cfg, err := Load(p, env.Map{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.IntervalString(); got != "-10s" {
		t.Errorf("IntervalString() = %q, want -10s", got)
	}
}

func TestLoadExpandsFromProvider(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "alfredwf.toml")
	writeFile(t, p, "[update]\nrepo = \"${WF_OWNER:-nobody}/tool\"\n")
	t.Setenv("WF_OWNER", "process")

	cfg, err := Load(p, env.Map{"WF_OWNER": "provider"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Update.Repo != "provider/tool" {
		t.Errorf("Update.Repo = %q, want provider/tool", cfg.Update.Repo)
	}
}

func TestResolveWithoutFile(t *testing.T) {
	cfg, err := Resolve("", t.TempDir(), env.Map{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Path != "" || cfg.Update.Repo != "" {
		t.Errorf("Resolve() = %+v, want empty config", cfg)
	}
	if got := cfg.IntervalString(); got != "default" {
		t.Errorf("IntervalString() = %q, want default", got)
	}
}

func TestEnvironmentOverlay(t *testing.T) {
	debug := false
	cfg := &Config{Workflow: WorkflowConfig{
		UID:     "from-config",
		DataDir: "/cfg/data",
		Debug:   &debug,
	}}

	fallback := env.Map{
		env.KeyWorkflowUID:  "from-alfred",
		env.KeyWorkflowName: "My Tool",
		env.KeyDebug:        "1",
	}

	e := env.New(cfg.Environment(fallback))

	if uid, _ := e.WorkflowUID(); uid != "from-config" {
		t.Errorf("WorkflowUID() = %q, want from-config", uid)
	}
	if name, _ := e.WorkflowName(); name != "My Tool" {
		t.Errorf("WorkflowName() = %q, want fallback value", name)
	}
	if data, _ := e.WorkflowData(); data != "/cfg/data" {
		t.Errorf("WorkflowData() = %q", data)
	}
	if e.IsDebug() {
		t.Error("IsDebug() should be false when config disables debug")
	}
	if _, ok := e.WorkflowCache(); ok {
		t.Error("WorkflowCache() should be absent")
	}
}
