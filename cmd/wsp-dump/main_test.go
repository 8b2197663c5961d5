package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/wsp/pkg/wsp"
	"github.com/calvinalkan/wsp/pkg/wsp/backend"
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

func scriptedRepl(cmds ...string) replFunc {
	return func(out io.Writer, db *wsp.Database) error {
		for _, cmd := range cmds {
			dispatch(out, db, cmd)
		}

		return nil
	}
}

func TestRunDumpsArchivesAndStats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "metric.wsp")

	b := backend.NewFile()
	if err := wsp.Create(path, []wsp.ArchiveSpec{{SecondsPerPoint: 60, Count: 10}}, codec.Average, 0.5, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	var out, errOut bytes.Buffer

	code := run(&out, &errOut, []string{path}, nil, scriptedRepl("archives", "stats", "exit"))
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errOut.String())
	}

	if !strings.Contains(out.String(), "spp=60") {
		t.Fatalf("archives output missing spp: %q", out.String())
	}

	if !strings.Contains(out.String(), "archive_count: 1") {
		t.Fatalf("stats output missing archive_count: %q", out.String())
	}
}

func TestRunDumpMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var out, errOut bytes.Buffer

	code := run(&out, &errOut, []string{filepath.Join(dir, "missing.wsp")}, nil, scriptedRepl())
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestRunDumpHelp(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	code := run(&out, &errOut, []string{"--help"}, nil, scriptedRepl())
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if !strings.Contains(out.String(), "Usage: wsp-dump") {
		t.Fatalf("help text missing usage line: %q", out.String())
	}
}
