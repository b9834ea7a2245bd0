package traverse

import (
	"errors"
	"fmt"

	"github.com/mattinsler/protos/internal/ast"
)

// ErrContractViolation is matched by every visitor contract error.
var ErrContractViolation = errors.New("visitor contract violation")

// ErrAdapterInUse is returned by StringVisitor.Init while a traversal using
// the same adapter is still in flight.
var ErrAdapterInUse = fmt.Errorf("%w: string adapter already in use", ErrContractViolation)

// ContractError reports a visitor that breaks the walk contract at a node of
// the given kind.
type ContractError struct {
	Kind   ast.Kind
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrContractViolation, e.Kind, e.Reason)
}

// Unwrap lets errors.Is match ErrContractViolation.
func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}

// CallbackError wraps an error returned by a visitor callback.
type CallbackError struct {
	Kind  ast.Kind
	Phase string // enter, exit or handle
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Phase, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// wrapCallback attaches kind and phase unless err already came out of a
// nested walk.
func wrapCallback(kind ast.Kind, phase string, err error) error {
	var ce *CallbackError
	var contract *ContractError
	if errors.As(err, &ce) || errors.As(err, &contract) {
		return err
	}
	return &CallbackError{Kind: kind, Phase: phase, Err: err}
}
