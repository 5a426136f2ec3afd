package eea

import (
	"errors"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/validation"
	"github.com/gorilla/rpc/v2/json2"
)

// Error codes of the private transaction API. The enclave related faults
// share one code.
const (
	CodeNonceTooLow           json2.ErrorCode = -32001
	CodeInvalidSignature      json2.ErrorCode = -32002
	CodeIntrinsicGas          json2.ErrorCode = -32003
	CodeUpfrontCost           json2.ErrorCode = -32004
	CodeExceedsBlockGasLimit  json2.ErrorCode = -32005
	CodeIncorrectNonce        json2.ErrorCode = -32006
	CodeTxSenderNotAuthorized json2.ErrorCode = -32007
	CodePrivacy               json2.ErrorCode = -50100
)

var (
	ErrInvalidParams = &json2.Error{Code: json2.E_BAD_PARAMS, Message: "Invalid params"}
	ErrInternal      = &json2.Error{Code: json2.E_INTERNAL, Message: "Internal error"}
	ErrDecode        = &json2.Error{Code: CodePrivacy, Message: "Unable to decode the private signed raw transaction"}
	ErrValueNotZero  = &json2.Error{Code: CodePrivacy, Message: "We cannot transfer ether in private transaction yet."}
	ErrEnclave       = &json2.Error{Code: CodePrivacy, Message: "Error communicating with enclave"}
)

// reasonErrors is the one table both semantic validation and pool admission
// reasons are answered from.
var reasonErrors = map[validation.Reason]*json2.Error{
	validation.NonceTooLow:                 {Code: CodeNonceTooLow, Message: "Nonce too low"},
	validation.IncorrectNonce:              {Code: CodeIncorrectNonce, Message: "Incorrect nonce"},
	validation.InvalidSignature:            {Code: CodeInvalidSignature, Message: "Invalid signature"},
	validation.IntrinsicGasExceedsGasLimit: {Code: CodeIntrinsicGas, Message: "Intrinsic gas exceeds gas limit"},
	validation.UpfrontCostExceedsBalance:   {Code: CodeUpfrontCost, Message: "Upfront cost exceeds account balance"},
	validation.ExceedsBlockGasLimit:        {Code: CodeExceedsBlockGasLimit, Message: "Transaction gas limit exceeds block gas limit"},
	validation.TxSenderNotAuthorized:       {Code: CodeTxSenderNotAuthorized, Message: "Sender account not authorized to send transactions"},
}

// invalidTransaction turns an invalid outcome into a fault. A reason missing
// from the table is a broken collaborator and becomes an internal fault.
func invalidTransaction(stage string, res validation.Result) *Fault {
	if _, ok := reasonErrors[res.Reason()]; !ok {
		log.Error("unmapped validation reason", "stage", stage, "reason", res.Reason(), "detail", res.Detail())
		return newFault(FaultInternal, errors.New(stage+": unmapped reason "+res.String()))
	}
	return &Fault{Kind: FaultInvalidTransaction, Reason: res.Reason(), cause: errors.New(stage + ": " + res.String())}
}

// ToJSONRPCError maps a fault to the error returned to the caller.
func ToJSONRPCError(f *Fault) *json2.Error {
	switch f.Kind {
	case FaultInvalidParams:
		return ErrInvalidParams
	case FaultDecode:
		return ErrDecode
	case FaultValueNotZero:
		return ErrValueNotZero
	case FaultEnclave, FaultUnauthorized:
		return ErrEnclave
	case FaultInvalidTransaction:
		if e, ok := reasonErrors[f.Reason]; ok {
			return e
		}
	}
	return ErrInternal
}
