package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/waterfall/pkg/dashboard"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

// captureOutput redirects status output to a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

// execute runs the root command with an isolated config and cache.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WATERFALL_CONFIG", filepath.Join(dir, "absent.toml"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	buf := captureOutput(t)
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"render", "show", "view", "mock", "bucket", "serve", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "config", "show")
	if !wferrors.Is(err, wferrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConfigFileApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[render]\nperiod = \"month\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(got, `period = "month"`) {
		t.Errorf("config show output missing file value:\n%s", got)
	}

	got, err = execute(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(got) != path {
		t.Errorf("config path = %q, want %q", got, path)
	}
}

func TestMockThenShow(t *testing.T) {
	payload := filepath.Join(t.TempDir(), "demo.json")
	if _, err := execute(t, "mock", "--seed", "7", "--weeks", "4", "--months", "3", "--start", "2024-01", "-o", payload); err != nil {
		t.Fatalf("mock: %v", err)
	}

	p, err := dashboard.Load(payload)
	if err != nil {
		t.Fatalf("mock payload invalid: %v", err)
	}
	if len(p.WeekDeltas) != 4 || len(p.MonthDeltas) != 3 {
		t.Errorf("mock sizes = %d weeks, %d months", len(p.WeekDeltas), len(p.MonthDeltas))
	}
	if p.MonthLabels[0] != "2024-01" {
		t.Errorf("first month = %q, want 2024-01", p.MonthLabels[0])
	}

	got, err := execute(t, "show", payload, "--period", "month")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"2024-03", "Total", "Category"} {
		if !strings.Contains(got, want) {
			t.Errorf("show output missing %q", want)
		}
	}
}

func TestMockIsDeterministic(t *testing.T) {
	a, _ := mockPayload(mockOpts{seed: 3, weeks: 5, months: 2, min: 0, max: 10})
	b, _ := mockPayload(mockOpts{seed: 3, weeks: 5, months: 2, min: 0, max: 10})
	ab, _ := a.Marshal()
	bb, _ := b.Marshal()
	if !bytes.Equal(ab, bb) {
		t.Error("same seed produced different payloads")
	}

	if _, err := mockPayload(mockOpts{start: "January"}); err == nil {
		t.Error("expected error for malformed --start")
	}
}

func TestBucketCommand(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "obs.csv")
	if err := os.WriteFile(csv, []byte("time,value\n2024-03-04,5\n2024-03-06,2\n2024-03-12,-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	payload := filepath.Join(dir, "payload.json")

	if _, err := execute(t, "bucket", csv, "--weeks", "2", "--months", "1", "-o", payload); err != nil {
		t.Fatalf("bucket: %v", err)
	}

	p, err := dashboard.Load(payload)
	if err != nil {
		t.Fatal(err)
	}
	wantLabels := []string{"2024-03-04", "2024-03-11"}
	wantDeltas := []float64{7, -1}
	for i := range wantLabels {
		if p.WeekLabels[i] != wantLabels[i] || p.WeekDeltas[i] != wantDeltas[i] {
			t.Errorf("week %d = %s/%v, want %s/%v", i, p.WeekLabels[i], p.WeekDeltas[i], wantLabels[i], wantDeltas[i])
		}
	}
	if len(p.MonthDeltas) != 1 || p.MonthDeltas[0] != 6 {
		t.Errorf("month deltas = %v, want [6]", p.MonthDeltas)
	}
}

func TestBucketEnd(t *testing.T) {
	if _, err := bucketEnd("03/12/2024", nil); err == nil {
		t.Error("expected error for malformed --end")
	}
	end, err := bucketEnd("2024-03-12", nil)
	if err != nil || end.Format(dashboard.WeekLabelLayout) != "2024-03-12" {
		t.Errorf("bucketEnd() = %v, %v", end, err)
	}
}

func TestCacheCommands(t *testing.T) {
	got, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	dir := strings.TrimSpace(got)
	if filepath.Base(dir) != appName {
		t.Errorf("cache path = %q, want .../%s", dir, appName)
	}

	if got, err := execute(t, "cache", "clear"); err != nil || !strings.Contains(got, "empty") {
		t.Errorf("clear on missing dir = %q, %v", got, err)
	}
}

func TestCompletionCommand(t *testing.T) {
	got, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "waterfall") {
		t.Error("bash completion does not mention the command")
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
