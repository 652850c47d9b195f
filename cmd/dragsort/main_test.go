package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/dragsort/internal/config"
	"github.com/vango-dev/dragsort/internal/errors"
	"github.com/vango-dev/dragsort/pkg/dnd"
)

const testPage = `<!doctype html><html><body>
<div style="display: flex; width: 400px">
  <ul id="left" class="list" style="width: 200px; height: 300px">
    <li id="one" class="item" style="height: 50px"><b class="grip">=</b> one</li>
    <li id="two" class="item" style="height: 50px"><b class="grip">=</b> two</li>
  </ul>
  <ul id="right" class="list" style="width: 200px; height: 300px"></ul>
</div>
</body></html>`

// project writes a dragsort.json and board page into a temp dir.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "board.html"), []byte(testPage), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.New()
	cfg.Name = "test"
	cfg.Board.Page = "board.html"
	cfg.Board.Elements = ".item"
	cfg.Board.Anchors = ".grip"
	cfg.Board.Containers = ".list"
	cfg.Log.Level = "error"
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulateDemoBoard(t *testing.T) {
	testChdir(t, t.TempDir())

	out, err := run(t, "simulate", "--from", "card-1", "--to", "#done", "--steps", "3", "--log-level", "error")
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want started + 3 moves + completed:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], dnd.EventStarted) {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[4], dnd.EventCompleted) || !strings.Contains(lines[4], "-> #done[0]") {
		t.Errorf("last line = %q", lines[4])
	}
}

func TestSimulateProjectJSON(t *testing.T) {
	dir := project(t)

	out, err := run(t, "--config", dir, "simulate", "--from", "one", "--to", "300,10", "--json")
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	var rec recorder
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("bad JSON %q: %v", out, err)
	}
	if len(rec.Signals) != 3 {
		t.Fatalf("signals = %d, want 3", len(rec.Signals))
	}
	last := rec.Signals[2]
	if last.Name != dnd.EventCompleted || last.Container != "right" || last.Index != 0 {
		t.Errorf("last signal = %+v", last)
	}
	if !strings.Contains(rec.Snapshot, `id="right"`) {
		t.Errorf("snapshot = %q", rec.Snapshot)
	}
}

func TestSimulateErrors(t *testing.T) {
	dir := project(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown element", []string{"--from", "ghost", "--to", "1,1"}},
		{"not draggable", []string{"--from", "left", "--to", "1,1"}},
		{"bad point", []string{"--from", "one", "--to", "here"}},
		{"unknown target", []string{"--from", "one", "--to", "#ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", dir, "simulate"}, tt.args...)
			_, err := run(t, args...)
			if errors.Code(err) != "E140" {
				t.Errorf("err = %v, want E140", err)
			}
		})
	}
}

func TestRenderBoxes(t *testing.T) {
	dir := project(t)

	out, err := run(t, "--config", filepath.Join(dir, config.ConfigFileName), "render", "--boxes")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	for _, want := range []string{
		"container  ul#left.list",
		"container  ul#right.list",
		"draggable  li#one.item",
		"anchor",
		"x=200 y=0 w=200 h=300",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "--config", dir, "render")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<ul id="right"`) {
		t.Errorf("render output = %q", out)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, "init", dir, "--name", "board"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "board" {
		t.Errorf("Name = %q", cfg.Name)
	}

	if _, err := run(t, "init", dir); errors.Code(err) != "E140" {
		t.Errorf("second init err = %v, want E140", err)
	}
	if _, err := run(t, "init", dir, "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestServerConfig(t *testing.T) {
	dir := project(t)
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.Port = 4000
	cfg.Server.PingInterval = "15s"
	cfg.Server.AllowedOrigins = []string{"http://app.example"}

	sc, err := serverConfig(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if sc.Address != "localhost:4000" {
		t.Errorf("Address = %q", sc.Address)
	}
	if sc.PingInterval != 15*time.Second {
		t.Errorf("PingInterval = %v", sc.PingInterval)
	}
	if sc.Board.Page != testPage || sc.Board.Anchors != ".grip" {
		t.Errorf("Board = %+v", sc.Board)
	}
	if sc.CheckOrigin == nil {
		t.Error("CheckOrigin not set")
	}

	cfg.Board.Page = "missing.html"
	if _, err := serverConfig(cfg, slog.Default()); errors.Code(err) != "E121" {
		t.Errorf("missing page err = %v, want E121", err)
	}
}

func TestLoadFlags(t *testing.T) {
	dir := project(t)

	var stderr bytes.Buffer
	opts := &globalOptions{configPath: dir, logLevel: "debug", logFormat: "json"}
	cfg, logger, err := opts.load(&stderr)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.LogLevel())
	}
	logger.Info("hello")
	if !strings.HasPrefix(stderr.String(), "{") {
		t.Errorf("json handler output = %q", stderr.String())
	}

	opts = &globalOptions{configPath: dir, logLevel: "chatty"}
	if _, _, err := opts.load(&stderr); errors.Code(err) != "E123" {
		t.Errorf("bad level err = %v, want E123", err)
	}

	opts = &globalOptions{configPath: filepath.Join(dir, "nope.json")}
	if _, _, err := opts.load(&stderr); errors.Code(err) != "E141" {
		t.Errorf("missing file err = %v, want E141", err)
	}
}

// testChdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
