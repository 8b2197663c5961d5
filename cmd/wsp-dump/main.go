// Command wsp-dump opens an existing whisper-style archive file
// read-only and drives an interactive REPL for inspecting its
// metadata and points (spec.md section 6, grounded on cmd/sloty's
// liner-based browser for slotcache files).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/peterh/liner"

	"github.com/calvinalkan/wsp/internal/wspcli"
	"github.com/calvinalkan/wsp/pkg/wsp"
	"github.com/calvinalkan/wsp/pkg/wsp/backend"
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:], os.Environ(), runREPL))
}

// replFunc is injected so tests can exercise run() without driving a
// real terminal.
type replFunc func(out io.Writer, db *wsp.Database) error

func run(out, errOut io.Writer, args, env []string, repl replFunc) int {
	cfg, err := wspcli.LoadConfig(mustGetwd(), env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	flagSet := flag.NewFlagSet("wsp-dump", flag.ContinueOnError)
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
	if len(rest) < 1 {
		fprintln(errOut, "error: usage: wsp-dump [flags] <path>")

		return 1
	}

	mapKind, err := wspcli.ParseMapping(*mapping)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	b := backend.New(mapKind, nil)

	db := wsp.New()

	if err := db.Open(rest[0], b, backend.Read); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}
	defer db.Close()

	if err := repl(out, db); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

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
	fprintln(w, "Usage: wsp-dump [flags] <path>")
	fprintln(w)
	fprintln(w, "Opens path read-only and starts an interactive browser.")
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, "  --mapping <kind>   Storage backend: file|mmap|memory [default: file]")
	fprintln(w)
	fprintln(w, "REPL commands:")
	fprintln(w, "  archives                      List archive descriptors")
	fprintln(w, "  stats                         Show aggregation, xff, retention")
	fprintln(w, "  fetch <archive> <from> <until>  Fetch points by time window")
	fprintln(w, "  raw <archive> <offset> <size>   Load raw, unfiltered points")
	fprintln(w, "  help                          Show this help")
	fprintln(w, "  exit / quit / q               Exit")
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".wsp_dump_history")
}

// runREPL is the interactive, liner-backed command loop.
func runREPL(out io.Writer, db *wsp.Database) error {
	state := liner.NewLiner()
	defer state.Close()

	state.SetCtrlCAborts(true)
	state.SetCompleter(completer)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = state.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Fprintln(out, "wsp-dump -", len(db.Archives()), "archive(s). Type 'help' for commands.")

	for {
		line, err := state.Prompt("wsp-dump> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Fprintln(out, "\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		state.AppendHistory(line)

		if dispatch(out, db, line) {
			break
		}
	}

	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			_, _ = state.WriteHistory(f)
			_ = f.Close()
		}
	}

	return nil
}

// dispatch runs one REPL line and reports whether the loop should
// terminate.
func dispatch(out io.Writer, db *wsp.Database, line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		fmt.Fprintln(out, "Bye!")

		return true
	case "help", "?":
		printHelp(out)
	case "archives":
		cmdArchives(out, db)
	case "stats":
		cmdStats(out, db)
	case "fetch":
		cmdFetch(out, db, args)
	case "raw":
		cmdRaw(out, db, args)
	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help')\n", cmd)
	}

	return false
}

func completer(line string) []string {
	commands := []string{"archives", "stats", "fetch", "raw", "help", "exit", "quit", "q"}

	lower := strings.ToLower(line)

	var out []string

	for _, c := range commands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}

	return out
}

func cmdArchives(out io.Writer, db *wsp.Database) {
	for i, a := range db.Archives() {
		fmt.Fprintf(out, "%3d. spp=%-6d count=%-8d retention=%-10d offset=%d\n",
			i, a.SecondsPerPoint, a.Count, a.Retention, a.Offset)
	}
}

func cmdStats(out io.Writer, db *wsp.Database) {
	s := db.Stats()
	fmt.Fprintf(out, "aggregation:   %d\n", s.Aggregation)
	fmt.Fprintf(out, "xff:           %g\n", s.XFilesFactor)
	fmt.Fprintf(out, "max_retention: %d\n", s.MaxRetention)
	fmt.Fprintf(out, "archive_count: %d\n", s.ArchiveCount)
}

func cmdFetch(out io.Writer, db *wsp.Database, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(out, "Usage: fetch <archive> <from> <until>")

		return
	}

	idx, from, until, err := parseFetchArgs(args)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)

		return
	}

	points := make([]codec.Point, db.Archives()[idx].Count)

	n, err := db.FetchTimePoints(idx, from, until, points)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)

		return
	}

	printPoints(out, points[:n])
}

func cmdRaw(out io.Writer, db *wsp.Database, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(out, "Usage: raw <archive> <offset> <size>")

		return
	}

	idx, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(out, "Error: archive index:", err)

		return
	}

	offset, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(out, "Error: offset:", err)

		return
	}

	size, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintln(out, "Error: size:", err)

		return
	}

	points := make([]codec.Point, size)

	if err := db.LoadPoints(idx, offset, size, points); err != nil {
		fmt.Fprintln(out, "Error:", err)

		return
	}

	printPoints(out, points)
}

func parseFetchArgs(args []string) (idx int, from, until uint32, err error) {
	idx, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("archive index: %w", err)
	}

	f, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("from: %w", err)
	}

	u, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("until: %w", err)
	}

	return idx, uint32(f), uint32(u), nil
}

func printPoints(out io.Writer, points []codec.Point) {
	if len(points) == 0 {
		fmt.Fprintln(out, "(empty)")

		return
	}

	for _, p := range points {
		fmt.Fprintf(out, "%d: %v\n", p.Timestamp, p.Value)
	}
}
