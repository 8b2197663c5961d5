// Command wsp-update writes points into the ring slots of an existing
// whisper-style archive file (spec.md section 6: update).
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

	flagSet := flag.NewFlagSet("wsp-update", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	mapping := flagSet.String("mapping", cfg.Mapping, "Storage backend: file|mmap|memory")
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
		fprintln(errOut, "error: usage: wsp-update [flags] <path> <timestamp:value,...>")

		return 1
	}

	path := rest[0]

	points, err := wspcli.ParsePointSpecs(rest[1])
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

	db := wsp.New()

	if err := db.Open(path, b, backend.Read|backend.Write); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}
	defer db.Close()

	for _, pt := range points {
		if err := db.Update(pt); err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}
	}

	fprintln(out, len(points), "point(s) written")

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
	fprintln(w, "Usage: wsp-update [flags] <path> <point-list>")
	fprintln(w)
	fprintln(w, `point-list is comma-separated <timestamp>:<value> tokens, e.g. "1700000000:42.5".`)
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, "  --mapping <kind>   Storage backend: file|mmap|memory [default: file]")
}
