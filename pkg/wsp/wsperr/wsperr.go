// Package wsperr defines the error taxonomy shared by every fallible
// operation in the wsp storage engine.
//
// Callers classify errors with errors.Is against the exported Kind
// sentinels (e.g. errors.Is(err, wsperr.Retention)), the same way the
// teacher's pkg/slotcache callers classify against ErrBusy/ErrCorrupt.
package wsperr

import (
	"errors"
	"fmt"
)

// Kind enumerates the abstract error classes from spec.md section 7.
// Kind values are also returned as sentinel errors so callers can use
// errors.Is directly on them; Error.Kind additionally exposes the class
// when an Error has been wrapped with extra context.
type Kind error

// Sentinel errors. Every operation that fails returns an error that
// unwraps (via errors.Is) to exactly one of these.
var (
	None               Kind = errors.New("wsperr: none")
	Io                 Kind = errors.New("wsperr: io")
	NotOpen            Kind = errors.New("wsperr: not open")
	AlreadyOpen        Kind = errors.New("wsperr: already open")
	Malloc             Kind = errors.New("wsperr: allocation failed")
	Offset             Kind = errors.New("wsperr: seek offset mismatch")
	FutureTimestamp    Kind = errors.New("wsperr: timestamp is in the future")
	Retention          Kind = errors.New("wsperr: no archive covers this age")
	Archive            Kind = errors.New("wsperr: invalid archive configuration")
	PointOob           Kind = errors.New("wsperr: point write out of bounds")
	UnknownAggregation Kind = errors.New("wsperr: unknown aggregation function")
	ArchiveMisaligned  Kind = errors.New("wsperr: archive descriptors misaligned")
	TimeInterval       Kind = errors.New("wsperr: from is after until")
	IoMode             Kind = errors.New("wsperr: open flags specify neither read nor write")
	Mmap               Kind = errors.New("wsperr: mmap failed")
	Ftruncate          Kind = errors.New("wsperr: ftruncate failed")
	Fsync              Kind = errors.New("wsperr: fsync failed")
	Open               Kind = errors.New("wsperr: open failed")
	Fopen              Kind = errors.New("wsperr: fopen failed")
	Fileno             Kind = errors.New("wsperr: fileno failed")
	IoMissing          Kind = errors.New("wsperr: no backend instance")
	IoInvalid          Kind = errors.New("wsperr: backend type mismatch")
	IoOffset           Kind = errors.New("wsperr: offset out of bounds of backing region")
)

// Error wraps a Kind with operation context and an optional syscall
// subcode, mirroring how pkg/slotcache wraps its sentinel errors with
// fmt.Errorf("%w: ...") for extra context while staying errors.Is-able.
type Error struct {
	Kind Kind
	// Op names the failing operation, e.g. "open", "update".
	Op string
	// Subcode is a backend-specific syscall error number, set only by
	// backend implementations (section 4.2's "integer subcode").
	Subcode int
	// Cause is the underlying error, if any (e.g. an *os.PathError).
	Cause error
}

// New builds an *Error for op failing with kind, optionally wrapping cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// WithSubcode attaches a backend syscall subcode and returns the receiver,
// letting backend code build the error in one expression:
//
//	return wsperr.New(wsperr.Mmap, "open", err).WithSubcode(int(errno))
func (e *Error) WithSubcode(code int) *Error {
	e.Subcode = code
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		if e.Subcode != 0 {
			return fmt.Sprintf("wsp: %s: %v (subcode %d): %v", e.Op, e.Kind, e.Subcode, e.Cause)
		}

		return fmt.Sprintf("wsp: %s: %v: %v", e.Op, e.Kind, e.Cause)
	}

	return fmt.Sprintf("wsp: %s: %v", e.Op, e.Kind)
}

// Unwrap lets errors.Is(err, wsperr.Retention) match through Kind, and
// errors.Is/As reach the wrapped Cause as well.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}

	return []error{e.Kind}
}
