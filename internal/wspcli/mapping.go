package wspcli

import (
	"fmt"

	"github.com/calvinalkan/wsp/pkg/wsp/backend"
)

// ParseMapping resolves the --mapping flag value to a backend.Mapping
// (spec.md section 6). "memory" is accepted for parity with the
// programmatic API but has no practical CLI use, since a process-
// resident database created by one invocation doesn't survive for a
// second to open.
func ParseMapping(s string) (backend.Mapping, error) {
	switch s {
	case "file":
		return backend.FileMapping, nil
	case "mmap":
		return backend.MmapMapping, nil
	case "memory":
		return backend.MemoryMapping, nil
	default:
		return 0, fmt.Errorf("%w: unknown mapping %q (want file, mmap, or memory)", ErrGrammar, s)
	}
}
