package wspcli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinalkan/wsp/pkg/wsp"
)

// unitSeconds maps the single-letter duration suffixes spec.md section 6
// defines for archive-spec precision (minutes, hours, days, weeks,
// years) to their length in seconds.
var unitSeconds = map[byte]uint32{
	'm': 60,
	'h': 3600,
	'd': 86400,
	'w': 604800,
	'y': 31536000,
}

// ParseArchiveSpec parses one "<precision>:<retention>" token of the
// wsp-create archive-list grammar, e.g. "1m:1440" (one sample per
// minute, 1440 points kept, i.e. one day). spec.md section 6's grammar
// is
// "<digits><suffix>:<digits>": precision requires one of the m/h/d/w/y
// suffixes (a bare integer is an error, there is no seconds suffix), and
// retention is always a plain point count with no suffix.
func ParseArchiveSpec(tok string) (wsp.ArchiveSpec, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return wsp.ArchiveSpec{}, fmt.Errorf("%w: archive spec %q must be <precision>:<retention>", ErrGrammar, tok)
	}

	spp, err := parseDuration(parts[0])
	if err != nil {
		return wsp.ArchiveSpec{}, fmt.Errorf("%w: precision in %q: %w", ErrGrammar, tok, err)
	}

	if spp == 0 {
		return wsp.ArchiveSpec{}, fmt.Errorf("%w: precision in %q must be > 0", ErrGrammar, tok)
	}

	count, err := parseRetention(parts[1])
	if err != nil {
		return wsp.ArchiveSpec{}, fmt.Errorf("%w: retention in %q: %w", ErrGrammar, tok, err)
	}

	return wsp.ArchiveSpec{SecondsPerPoint: spp, Count: count}, nil
}

// ParseArchiveSpecs parses a comma-separated list of archive specs, in
// the finest-to-coarsest order Create requires.
func ParseArchiveSpecs(list string) ([]wsp.ArchiveSpec, error) {
	toks := strings.Split(list, ",")

	out := make([]wsp.ArchiveSpec, 0, len(toks))

	for _, tok := range toks {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		spec, err := ParseArchiveSpec(tok)
		if err != nil {
			return nil, err
		}

		out = append(out, spec)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty archive list", ErrGrammar)
	}

	return out, nil
}

// parseDuration parses a precision token, "<digits><suffix>" with suffix
// one of m/h/d/w/y, into a second count. A suffixless precision is a
// grammar error: spec.md section 6 has no bare-seconds form.
func parseDuration(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	last := s[len(s)-1]
	if last >= '0' && last <= '9' {
		return 0, fmt.Errorf("missing unit suffix (one of m/h/d/w/y)")
	}

	unit, ok := unitSeconds[last]
	if !ok {
		return 0, fmt.Errorf("unknown unit suffix %q", string(last))
	}

	n, err := strconv.ParseUint(s[:len(s)-1], 10, 32)
	if err != nil {
		return 0, err
	}

	return uint32(n) * unit, nil
}

// parseRetention parses a retention token, a plain point count with no
// unit suffix: spec.md section 6 restricts the retention side of an
// archive spec to digits only.
func parseRetention(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("empty retention")
	}

	last := s[len(s)-1]
	if last < '0' || last > '9' {
		return 0, fmt.Errorf("retention %q must be a plain point count with no unit suffix", s)
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}

	return uint32(n), nil
}
