package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/fiber/internal/config"
)

func testRuntime(t *testing.T) *runtime {
	t.Helper()
	return newRuntime(config.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	rt := testRuntime(t)

	if err := runDemo(&out, rt, demoOptions{text: "hi", clicks: 2, dump: true, frames: true}); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"<h1>Type to render</h1>",
		"<h1>h</h1>",
		"<h1>hi</h1>",
		`<button class="counter">clicked 2 times</button>`,
		"5 commits",
		"initial=true",
		"Counter",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if html := rt.mem.Snapshot(); !strings.Contains(html, "<h1>hi</h1>") {
		t.Errorf("final tree = %s", html)
	}
}

func TestRunBench(t *testing.T) {
	rt := testRuntime(t)
	res, err := runBench(rt, benchOptions{rows: 30, iterations: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Passes != 3 {
		t.Errorf("Passes = %d, want 3", res.Passes)
	}
	// root, div, ul, then row component, li, span, text per row
	if want := 3 + 30*4; res.Units != 3*want {
		t.Errorf("Units = %d, want %d", res.Units, 3*want)
	}
	if got := len(rt.mem.Root().FindAll("li")); got != 30 {
		t.Errorf("li count = %d, want 30", got)
	}

	var out bytes.Buffer
	printBench(&out, benchOptions{rows: 30}, res)
	if !strings.Contains(out.String(), "units/pass") {
		t.Errorf("printBench output = %q", out.String())
	}
}

func TestRuntimeTree(t *testing.T) {
	rt := testRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.render(newMirror(rt).view("x")); err != nil {
		t.Fatal(err)
	}
	go rt.loop.Run(ctx)

	tree, err := rt.tree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Children) != 1 || tree.Children[0].Name != "div" {
		t.Errorf("tree = %+v", tree)
	}
}

func TestRuntimeTreeBeforeCommit(t *testing.T) {
	rt := testRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rt.loop.Run(ctx)

	if _, err := rt.tree(ctx); err != errNoTree {
		t.Errorf("tree() error = %v, want errNoTree", err)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	g := &globalOptions{dir: dir}

	cmd := configInitCmd(g)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	cmd = configInitCmd(g)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("second init without --force should fail")
	}

	cfg, err := g.load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inspect.Port != config.DefaultInspectPort {
		t.Errorf("Inspect.Port = %d", cfg.Inspect.Port)
	}
}

func TestGlobalOptionsLogLevel(t *testing.T) {
	g := &globalOptions{dir: t.TempDir(), logLevel: "nope"}
	if _, err := g.load(); err == nil {
		t.Error("load() should reject an invalid --log-level")
	}
}

func TestVersionShort(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}
