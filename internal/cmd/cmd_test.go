package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamancini/alfredwf/env"
)

const bundleBody = "PK fake workflow bundle"

// fakeGitHub serves a latest release for owner/wf and its bundle asset.
type fakeGitHub struct {
	*httptest.Server
	latestHits atomic.Int32
	tag        string
}

func newFakeGitHub(t *testing.T, tag string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{tag: tag}
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/wf/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		f.latestHits.Add(1)
		base := "http://" + r.Host
		fmt.Fprintf(w, `{
  "tag_name": %q,
  "assets": [
    {"name": "wf.alfredworkflow", "state": "uploaded", "browser_download_url": "%s/dl/wf.alfredworkflow"},
    {"name": "wf.alfred3workflow", "state": "uploaded", "browser_download_url": "%s/dl/wf.alfred3workflow"}
  ]
}`, f.tag, base, base)
	})
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(bundleBody))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

type testWorkflow struct {
	environ   env.Map
	dataDir   string
	cacheDir  string
	configDir string
}

func newTestWorkflow(t *testing.T) *testWorkflow {
	t.Helper()
	root := t.TempDir()
	w := &testWorkflow{
		dataDir:   filepath.Join(root, "data"),
		cacheDir:  filepath.Join(root, "cache"),
		configDir: filepath.Join(root, "workflow"),
	}
	if err := os.MkdirAll(w.configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	w.environ = env.Map{
		env.KeyWorkflowUID:     "abc-123",
		env.KeyWorkflowName:    "My Tool",
		env.KeyWorkflowVersion: "1.0.0",
		env.KeyWorkflowData:    w.dataDir,
		env.KeyWorkflowCache:   w.cacheDir,
	}
	return w
}

func (w *testWorkflow) writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(w.configDir, "alfredwf.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (w *testWorkflow) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := &rootOptions{
		stdout:  &stdout,
		stderr:  &stderr,
		environ: w.environ,
		workDir: w.configDir,
	}
	root := newRootCmd(opts, "1.0.0", "abc1234", "2026-01-01")
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCheckFirstRunThenRemote(t *testing.T) {
	gh := newFakeGitHub(t, "v2.0.0")
	w := newTestWorkflow(t)
	w.writeConfig(t, fmt.Sprintf("[update]\nrepo = \"owner/wf\"\napi_url = %q\ninterval = 0\n", gh.URL))

	out, _, err := w.run(t, "check", "-o", "json")
	if err != nil {
		t.Fatalf("first check error = %v", err)
	}
	var first checkResult
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatalf("first check output %q: %v", out, err)
	}
	if first.UpdateReady {
		t.Error("first check should never report an update")
	}
	if gh.latestHits.Load() != 0 {
		t.Errorf("first check contacted server %d times, want 0", gh.latestHits.Load())
	}

	out, _, err = w.run(t, "check", "-o", "json")
	if err != nil {
		t.Fatalf("second check error = %v", err)
	}
	var second checkResult
	if err := json.Unmarshal([]byte(out), &second); err != nil {
		t.Fatalf("second check output %q: %v", out, err)
	}
	if !second.UpdateReady {
		t.Error("second check should report v2.0.0 as an update")
	}
	if second.LatestVersion != "2.0.0" {
		t.Errorf("LatestVersion = %q, want 2.0.0", second.LatestVersion)
	}
	if second.CurrentVersion != "1.0.0" {
		t.Errorf("CurrentVersion = %q, want 1.0.0", second.CurrentVersion)
	}
	if gh.latestHits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", gh.latestHits.Load())
	}
}

func TestCheckScriptFilterOutput(t *testing.T) {
	gh := newFakeGitHub(t, "v2.0.0")
	w := newTestWorkflow(t)
	w.writeConfig(t, fmt.Sprintf("[update]\nrepo = \"owner/wf\"\napi_url = %q\ninterval = 0\n", gh.URL))

	if _, _, err := w.run(t, "check"); err != nil {
		t.Fatalf("first check error = %v", err)
	}

	out, _, err := w.run(t, "check", "-o", "alfred")
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, `"title":"Workflow update available: v2.0.0"`) {
		t.Errorf("alfred output missing update item: %s", out)
	}
	if !strings.Contains(out, `"arg":"`+updateKeyword+`"`) {
		t.Errorf("alfred output missing arg: %s", out)
	}
}

func TestCheckWithoutRepo(t *testing.T) {
	w := newTestWorkflow(t)

	t.Run("text output returns error", func(t *testing.T) {
		_, _, err := w.run(t, "check")
		if !errors.Is(err, errNoRepo) {
			t.Errorf("error = %v, want errNoRepo", err)
		}
	})

	t.Run("script filter output shows error item", func(t *testing.T) {
		out, stderr, err := w.run(t, "check", "-o", "alfred")
		if err != nil {
			t.Fatalf("error = %v, want nil", err)
		}
		if !strings.Contains(out, `"valid":false`) || !strings.Contains(out, "not configured for updates") {
			t.Errorf("alfred output = %s", out)
		}
		if !strings.Contains(stderr, "command failed") {
			t.Errorf("stderr should log the failure: %s", stderr)
		}
	})

	t.Run("xml output shows error item", func(t *testing.T) {
		out, _, err := w.run(t, "check", "-o", "xml")
		if err != nil {
			t.Fatalf("error = %v, want nil", err)
		}
		if !strings.HasPrefix(out, "<?xml") || !strings.Contains(out, `valid="no"`) {
			t.Errorf("xml output = %s", out)
		}
	})
}

func TestCheckServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := newTestWorkflow(t)
	w.writeConfig(t, fmt.Sprintf("[update]\nrepo = \"owner/wf\"\napi_url = %q\ninterval = 0\n", srv.URL))

	if _, _, err := w.run(t, "check"); err != nil {
		t.Fatalf("first check error = %v", err)
	}

	out, _, err := w.run(t, "check", "-o", "alfred")
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, "Could not reach the release server") {
		t.Errorf("alfred output = %s", out)
	}
}

func TestDownload(t *testing.T) {
	gh := newFakeGitHub(t, "v2.0.0")
	w := newTestWorkflow(t)
	w.writeConfig(t, fmt.Sprintf("[update]\nrepo = \"owner/wf\"\napi_url = %q\n", gh.URL))

	out, _, err := w.run(t, "download")
	if err != nil {
		t.Fatalf("download error = %v", err)
	}

	want := filepath.Join(w.cacheDir, "latest_release_abc-123.alfred3workflow")
	if strings.TrimSpace(out) != want {
		t.Errorf("download output = %q, want %q", out, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	if string(data) != bundleBody {
		t.Errorf("bundle content = %q", data)
	}
}

func TestSetVersionAndStatus(t *testing.T) {
	w := newTestWorkflow(t)

	out, _, err := w.run(t, "set-version", "1.5.0", "-o", "json")
	if err != nil {
		t.Fatalf("set-version error = %v", err)
	}
	var st statusResult
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("set-version output %q: %v", out, err)
	}
	if st.CurrentVersion != "1.5.0" {
		t.Errorf("CurrentVersion = %q, want 1.5.0", st.CurrentVersion)
	}
	wantPath := filepath.Join(w.dataDir, "abc-123-My_Tool-updater.json")
	if st.StatePath != wantPath {
		t.Errorf("StatePath = %q, want %q", st.StatePath, wantPath)
	}

	out, _, err = w.run(t, "status", "-o", "yaml")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	var again statusResult
	if err := yaml.Unmarshal([]byte(out), &again); err != nil {
		t.Fatalf("status output %q: %v", out, err)
	}
	if again.CurrentVersion != "1.5.0" {
		t.Errorf("status CurrentVersion = %q, want persisted 1.5.0", again.CurrentVersion)
	}
	if again.IntervalSecs != 86400 {
		t.Errorf("status IntervalSecs = %d, want 86400", again.IntervalSecs)
	}
	if !again.DueToCheck {
		t.Error("never-checked state should be due")
	}
}

func TestSetVersionInvalid(t *testing.T) {
	w := newTestWorkflow(t)
	if _, _, err := w.run(t, "set-version", "v1.0"); err == nil {
		t.Error("set-version with malformed version should fail")
	}
}

func TestSetInterval(t *testing.T) {
	w := newTestWorkflow(t)

	out, _, err := w.run(t, "set-interval", "3600", "-o", "json")
	if err != nil {
		t.Fatalf("set-interval error = %v", err)
	}
	var st statusResult
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if st.IntervalSecs != 3600 {
		t.Errorf("IntervalSecs = %d, want 3600", st.IntervalSecs)
	}

	out, _, err = w.run(t, "set-interval", "-o", "json", "--", "-60")
	if err != nil {
		t.Fatalf("set-interval with negative value error = %v", err)
	}
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if st.IntervalSecs != -60 || !st.DueToCheck {
		t.Errorf("IntervalSecs = %d, DueToCheck = %v, want -60 and due", st.IntervalSecs, st.DueToCheck)
	}

	if _, _, err := w.run(t, "set-interval", "soon"); err == nil {
		t.Error("set-interval with non-numeric value should fail")
	}
}

func TestConfigPathFromInjectedEnvironment(t *testing.T) {
	w := newTestWorkflow(t)
	cfgPath := filepath.Join(t.TempDir(), "elsewhere.toml")
	if err := os.WriteFile(cfgPath, []byte("[update]\nrepo = \"owner/elsewhere\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.environ["ALFREDWF_CONFIG"] = cfgPath
	t.Setenv("ALFREDWF_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	out, _, err := w.run(t, "status", "-o", "json")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	var st statusResult
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if st.Repo != "owner/elsewhere" || st.ConfigPath != cfgPath {
		t.Errorf("Repo = %q, ConfigPath = %q, want config from injected environment", st.Repo, st.ConfigPath)
	}
}

func TestStatusMissingEnvironment(t *testing.T) {
	w := newTestWorkflow(t)
	delete(w.environ, env.KeyWorkflowData)

	_, _, err := w.run(t, "status")
	if err == nil || !strings.Contains(err.Error(), env.KeyWorkflowData) {
		t.Errorf("status error = %v, want missing data dir", err)
	}
}

func TestEnvCommandUsesConfigOverlay(t *testing.T) {
	w := newTestWorkflow(t)
	w.writeConfig(t, "[workflow]\nuid = \"from-config\"\n")

	out, _, err := w.run(t, "env", "-o", "json")
	if err != nil {
		t.Fatalf("env error = %v", err)
	}
	var got envResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("env output %q: %v", out, err)
	}
	if got.UID != "from-config" {
		t.Errorf("UID = %q, want from-config", got.UID)
	}
	if got.Name != "My Tool" {
		t.Errorf("Name = %q, want value from environment", got.Name)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	w := newTestWorkflow(t)
	_, _, err := w.run(t, "status", "-o", "csv")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("error = %v, want unknown format", err)
	}
}

func TestVersionFlag(t *testing.T) {
	w := newTestWorkflow(t)
	out, _, err := w.run(t, "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if out != "alfredwf 1.0.0 (commit abc1234, built 2026-01-01)\n" {
		t.Errorf("--version output = %q", out)
	}
}

func TestDescribeLastCheck(t *testing.T) {
	hourAgo := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name          string
		in            string
		withTimestamp bool
		want          string
	}{
		{"never checked", "", true, "never"},
		{"relative", hourAgo, false, "1 hour ago"},
		{"with timestamp", hourAgo, true, hourAgo + " (1 hour ago)"},
		{"unparseable", "yesterday", true, "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeLastCheck(tt.in, tt.withTimestamp); got != tt.want {
				t.Errorf("describeLastCheck(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
