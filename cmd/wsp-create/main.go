// Command wsp-create allocates a new whisper-style archive file
// (spec.md section 6: create).
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/wsp/internal/wspcli"
	"github.com/calvinalkan/wsp/pkg/wsp"
	"github.com/calvinalkan/wsp/pkg/wsp/backend"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:], os.Environ()))
}

func run(out, errOut io.Writer, args, env []string) int {
	cfg, err := wspcli.LoadConfig(mustGetwd(), env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	flagSet := flag.NewFlagSet("wsp-create", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	mapping := flagSet.String("mapping", cfg.Mapping, "Storage backend: file|mmap|memory")
	aggregation := flagSet.String("aggregation", "average", "Aggregation: average|sum|last|max|min")
	xff := flagSet.Float64("xff", cfg.XFF, "x-files-factor, in [0,1]")
	help := flagSet.BoolP("help", "h", false, "Show help")

	if err := flagSet.Parse(args); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if *help {
		printHelp(out)

		return 0
	}

	rest := flagSet.Args()
	if len(rest) < 2 {
		fprintln(errOut, "error: usage: wsp-create [flags] <path> <archive,...>")

		return 1
	}

	path := rest[0]

	archives, err := wspcli.ParseArchiveSpecs(rest[1])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	agg, err := wspcli.ParseAggregation(*aggregation)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	mapKind, err := wspcli.ParseMapping(*mapping)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	b := backend.New(mapKind, nil)

	if err := wsp.Create(path, archives, agg, float32(*xff), b); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, path)

	return 0
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return wd
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printHelp(w io.Writer) {
	fprintln(w, "Usage: wsp-create [flags] <path> <archive-list>")
	fprintln(w)
	fprintln(w, "archive-list is comma-separated <precision>:<retention> tokens,")
	fprintln(w, "finest to coarsest; precision is <digits><unit> (m/h/d/w/y),")
	fprintln(w, `retention is a plain point count, e.g. "1m:1440,5m:8640,1h:43800".`)
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, "  --mapping <kind>       Storage backend: file|mmap|memory [default: file]")
	fprintln(w, "  --aggregation <kind>   average|sum|last|max|min [default: average]")
	fprintln(w, "  --xff <factor>         x-files-factor in [0,1] [default: 0.5]")
}
