// Package validation holds the reason vocabulary shared by private
// transaction validation and local pool admission.
package validation

import "fmt"

// Reason is why a transaction was rejected.
type Reason uint8

const (
	_ Reason = iota
	NonceTooLow
	IncorrectNonce
	InvalidSignature
	IntrinsicGasExceedsGasLimit
	UpfrontCostExceedsBalance
	ExceedsBlockGasLimit
	TxSenderNotAuthorized
)

var reasonNames = map[Reason]string{
	NonceTooLow:                 "NONCE_TOO_LOW",
	IncorrectNonce:              "INCORRECT_NONCE",
	InvalidSignature:            "INVALID_SIGNATURE",
	IntrinsicGasExceedsGasLimit: "INTRINSIC_GAS_EXCEEDS_GAS_LIMIT",
	UpfrontCostExceedsBalance:   "UPFRONT_COST_EXCEEDS_BALANCE",
	ExceedsBlockGasLimit:        "EXCEEDS_BLOCK_GAS_LIMIT",
	TxSenderNotAuthorized:       "TX_SENDER_NOT_AUTHORIZED",
}

func (r Reason) String() string {
	if n, ok := reasonNames[r]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(r))
}

// Result is either valid or invalid with exactly one reason.
type Result struct {
	reason Reason
	detail string
}

func Valid() Result {
	return Result{}
}

func Invalid(reason Reason, detail string) Result {
	return Result{reason: reason, detail: detail}
}

func (r Result) IsValid() bool {
	return r.reason == 0
}

// Reason returns the rejection reason, zero if the result is valid.
func (r Result) Reason() Reason {
	return r.reason
}

// Detail is an operator facing message, never returned to RPC callers.
func (r Result) Detail() string {
	return r.detail
}

func (r Result) String() string {
	if r.IsValid() {
		return "valid"
	}
	if r.detail == "" {
		return r.reason.String()
	}
	return fmt.Sprintf("%v: %v", r.reason, r.detail)
}
