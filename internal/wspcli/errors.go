package wspcli

import "errors"

// ErrGrammar reports a malformed archive-spec or point-spec CLI
// argument. It's a plain sentinel, not a wsperr.Kind: these failures
// happen before any Database call and never carry one of the engine's
// error codes.
var ErrGrammar = errors.New("wspcli: malformed argument")
