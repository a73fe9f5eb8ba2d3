package survey

import (
	"errors"
	"strings"
)

var (
	// ErrStorageUnavailable means the backing medium cannot be created, opened or written to.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrPersistenceFailure means a read or write against an existing medium failed or
	// returned a document that is not structurally valid.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrValidation means the submitted response has the wrong shape.
	ErrValidation = errors.New("validation error")
)

// Error ties a failure kind to the store operation and the underlying cause.
// errors.Is matches both the kind sentinel and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("survey")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func newError(op string, kind error, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the sentinel kind of err, or nil when err did not come from the store.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrStorageUnavailable, ErrPersistenceFailure} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Code is the stable machine-readable name of err's kind, used in API envelopes and metric labels.
func Code(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "validation_error"
	case ErrStorageUnavailable:
		return "storage_unavailable"
	case ErrPersistenceFailure:
		return "persistence_failure"
	default:
		return "internal_error"
	}
}
