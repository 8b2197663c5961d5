package wspcli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

// ParsePointSpec parses one "<timestamp>:<value>" token of the
// wsp-update point-list grammar. value accepts "nan" (case-insensitive)
// for an explicit gap, matching the on-disk NaN-as-absent convention
// (spec.md section 4.4).
func ParsePointSpec(tok string) (codec.Point, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return codec.Point{}, fmt.Errorf("%w: point %q must be <timestamp>:<value>", ErrGrammar, tok)
	}

	ts, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return codec.Point{}, fmt.Errorf("%w: timestamp in %q: %w", ErrGrammar, tok, err)
	}

	val, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return codec.Point{}, fmt.Errorf("%w: value in %q: %w", ErrGrammar, tok, err)
	}

	return codec.Point{Timestamp: uint32(ts), Value: val}, nil
}

// ParsePointSpecs parses a comma-separated list of point specs, in the
// order wsp-update should submit them to Database.Update.
func ParsePointSpecs(list string) ([]codec.Point, error) {
	toks := strings.Split(list, ",")

	out := make([]codec.Point, 0, len(toks))

	for _, tok := range toks {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		pt, err := ParsePointSpec(tok)
		if err != nil {
			return nil, err
		}

		out = append(out, pt)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty point list", ErrGrammar)
	}

	return out, nil
}
