package replay

import (
	"github.com/pkg/errors"
)

// FailureKind classifies where in the replay pipeline an error arose.
type FailureKind int

const (
	// SlotProcessing failures come from the per-slot transition.
	SlotProcessing FailureKind = iota
	// BlockProcessing failures come from applying a block's contents.
	BlockProcessing
	// StateAccess failures come from reading or hashing the state itself.
	StateAccess
)

// String implements fmt.Stringer.
func (k FailureKind) String() string {
	switch k {
	case SlotProcessing:
		return "slot processing"
	case BlockProcessing:
		return "block processing"
	case StateAccess:
		return "state access"
	default:
		return "unknown"
	}
}

// Error wraps a transition failure with the pipeline stage it came from.
// The underlying error is preserved verbatim and recoverable via Unwrap,
// so errors.Is and errors.As see through the classification.
//
// Hook and root-source errors are NOT wrapped in this type: they belong
// to the caller and propagate unchanged.
type Error struct {
	Kind FailureKind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying transition error.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the failure kind of err when it is (or wraps) a replay
// Error. The second return is false for caller-owned errors that passed
// through the replayer unclassified.
func KindOf(err error) (FailureKind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

func slotErr(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: SlotProcessing, Err: err}
}

func blockErr(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: BlockProcessing, Err: err}
}

func stateErr(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: StateAccess, Err: err}
}
