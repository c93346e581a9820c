package rusmt

import "github.com/pkg/errors"

// Error taxonomy. Only ErrTrivialUnsat and ErrEngineUnsat are recoverable —
// every other sentinel here is meant to abort processing of the current
// script once wrapped with call-site context via errors.Wrap.
var (
	ErrParse                = errors.New("parse error")
	ErrUnsupportedConnective = errors.New("unsupported connective")
	ErrArity                = errors.New("wrong arity for connective")
	ErrNoLogic              = errors.New("assert/push/pop before set-logic")
	ErrDoubleLogic          = errors.New("set-logic called twice")
	ErrPopUnderflow         = errors.New("pop would remove the base frame")
	ErrDuplicateSymbol      = errors.New("duplicate symbol")
	ErrIDExhausted          = errors.New("identifier allocator exhausted")
	ErrTrivialUnsat         = errors.New("trivial contradiction")
	ErrEngineUnsat          = errors.New("no viable backjump level")
)
