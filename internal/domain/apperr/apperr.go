// Package apperr classifies ledger failures so callers can tell bad input
// from state conflicts, unavailable collaborators and logic bugs.
package apperr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: bad input, nothing changed.
	KindValidation
	KindNotFound
	// KindStateConflict: valid input that the current state does not allow.
	KindStateConflict
	// KindDependency: an external collaborator failed; retry later.
	KindDependency
	// KindInvariant: the ledger reached a state it must never reach.
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindDependency:
		return "dependency"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is a sentinel carrying its kind and a stable code. Sentinels are
// compared by identity, so wrap them with fmt.Errorf("%w") to add detail.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of the first *Error in err's chain, or "internal".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}
