package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lixenwraith/invaders/config"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunTextRender(t *testing.T) {
	t.Chdir(t.TempDir())

	code, out, errOut := runCLI(t, "run", "1", "1", "--render", "text")
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "=== TICK 0 ===") || !strings.Contains(out, "defender wins at tick 2") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(errOut, "rounds") {
		t.Fatalf("metrics not printed:\n%s", errOut)
	}
}

func TestRunWritesSummary(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	code, _, errOut := runCLI(t, "run", "--rows", "2", "--cols", "2", "--render", "none", "--summary", "run.yaml")
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !bytes.Contains(data, []byte("outcome:")) {
		t.Fatalf("summary missing outcome:\n%s", data)
	}
}

func TestConfigErrorsExitWithUsage(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{"worker mismatch", []string{"run", "2", "3", "--workers", "5"}},
		{"non-numeric grid", []string{"run", "2", "x"}},
		{"one positional", []string{"run", "2"}},
		{"unknown flag", []string{"run", "--bogus"}},
		{"bad render", []string{"run", "--render", "hologram"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != exitConfig {
				t.Fatalf("exit %d, want %d; stderr:\n%s", code, exitConfig, errOut)
			}
			if !strings.Contains(errOut, "Usage:") {
				t.Fatalf("usage not printed:\n%s", errOut)
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		list    string
		want    []int
		wantErr bool
	}{
		{"", []int{0, 1, 2, 3}, false},
		{"0-2", []int{0, 1, 2}, false},
		{"3, 0-1", []int{0, 1, 3}, false},
		{"2", []int{2}, false},
		{"0-4", nil, true},
		{"2-1", nil, true},
		{"1,1", nil, true},
		{"a", nil, true},
	}
	for _, tt := range tests {
		got, err := parseIDs(tt.list, 4)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIDs(%q) err = %v, wantErr %v", tt.list, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseIDs(%q) = %v, want %v", tt.list, got, tt.want)
		}
	}
}

func TestRenderAuto(t *testing.T) {
	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	cfg := config.Defaults()

	a.isTerminal = func() bool { return false }
	if got := a.renderMode(cfg); got != config.RenderText {
		t.Fatalf("auto without a terminal = %s, want text", got)
	}
	a.isTerminal = func() bool { return true }
	if got := a.renderMode(cfg); got != config.RenderScreen {
		t.Fatalf("auto on a terminal = %s, want screen", got)
	}
	cfg.Render = config.RenderNone
	if got := a.renderMode(cfg); got != config.RenderNone {
		t.Fatalf("explicit none = %s", got)
	}
}
