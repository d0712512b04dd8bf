package term

import "errors"

// Failure kinds reported by a Session. None of them is recoverable; callers
// match them with errors.Is and abort.
var (
	ErrTerminalQuery       = errors.New("terminal attributes unavailable")
	ErrTerminalConfig      = errors.New("terminal attributes not applied")
	ErrGeometryUnavailable = errors.New("terminal geometry unavailable")
	ErrRead                = errors.New("terminal read failed")
)

// OpError records the terminal operation that failed, its failure kind and
// the underlying OS error, if any.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
