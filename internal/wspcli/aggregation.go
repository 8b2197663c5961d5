package wspcli

import (
	"fmt"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

// ParseAggregation resolves the --aggregation flag value to a
// codec.Aggregation (spec.md section 6).
func ParseAggregation(s string) (codec.Aggregation, error) {
	switch s {
	case "average":
		return codec.Average, nil
	case "sum":
		return codec.Sum, nil
	case "last":
		return codec.Last, nil
	case "max":
		return codec.Max, nil
	case "min":
		return codec.Min, nil
	default:
		return 0, fmt.Errorf("%w: unknown aggregation %q (want average, sum, last, max, or min)", ErrGrammar, s)
	}
}
