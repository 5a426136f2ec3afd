package eea

import (
	"fmt"

	"github.com/ConsenSysQuorum/eea-gateway/validation"
)

// FaultKind is the stage-level classification of a failed submission.
type FaultKind uint8

const (
	_ FaultKind = iota
	FaultInvalidParams
	FaultDecode
	FaultValueNotZero
	FaultEnclave
	FaultUnauthorized
	// FaultInvalidTransaction carries a validation.Reason from semantic
	// validation or pool admission.
	FaultInvalidTransaction
	FaultInternal
)

func (k FaultKind) String() string {
	switch k {
	case FaultInvalidParams:
		return "invalid-params"
	case FaultDecode:
		return "decode"
	case FaultValueNotZero:
		return "value-not-zero"
	case FaultEnclave:
		return "enclave"
	case FaultUnauthorized:
		return "unauthorized"
	case FaultInvalidTransaction:
		return "invalid-transaction"
	case FaultInternal:
		return "internal"
	default:
		return fmt.Sprintf("fault(%d)", uint8(k))
	}
}

// Fault is the terminal failure of one submission. The cause is for
// operators; only Kind and Reason reach the caller.
type Fault struct {
	Kind   FaultKind
	Reason validation.Reason // set for FaultInvalidTransaction
	cause  error
}

func newFault(kind FaultKind, cause error) *Fault {
	return &Fault{Kind: kind, cause: cause}
}

func (f *Fault) Error() string {
	s := f.Kind.String()
	if f.Kind == FaultInvalidTransaction {
		s += " " + f.Reason.String()
	}
	if f.cause != nil {
		s += ": " + f.cause.Error()
	}
	return s
}

func (f *Fault) Unwrap() error {
	return f.cause
}

// Outcome labels the fault for metrics.
func (f *Fault) Outcome() string {
	if f.Kind == FaultInvalidTransaction {
		return f.Reason.String()
	}
	return f.Kind.String()
}
