package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/calvinalkan/wsp/pkg/wsp"
	"github.com/calvinalkan/wsp/pkg/wsp/backend"
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

func TestRunWritesPoints(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "metric.wsp")

	b := backend.NewFile()
	if err := wsp.Create(path, []wsp.ArchiveSpec{{SecondsPerPoint: 1, Count: 3600}}, codec.Average, 0.5, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	ts := uint32(time.Now().Unix()) - 10

	var out, errOut bytes.Buffer

	code := run(&out, &errOut, []string{path, fmt.Sprintf("%d:42.5", ts)}, nil)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errOut.String())
	}

	db := wsp.New()
	if err := db.Open(path, b, backend.Read); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	got := make([]codec.Point, 1)

	n, err := db.FetchTimePoints(0, ts, ts, got)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if n != 1 || got[0].Value != 42.5 {
		t.Fatalf("got %v (n=%d), want one point with value 42.5", got, n)
	}
}

func TestRunRejectsMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var out, errOut bytes.Buffer

	code := run(&out, &errOut, []string{filepath.Join(dir, "missing.wsp"), "1:1"}, nil)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
