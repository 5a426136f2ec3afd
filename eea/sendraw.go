// Package eea implements eea_sendRawTransaction: a signed private
// transaction is stored in the enclave, validated, and a privacy marker
// transaction referencing it is admitted to the local pool.
package eea

import (
	"context"
	"errors"
	"fmt"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/privacy"
	"github.com/ConsenSysQuorum/eea-gateway/privatetx"
	"github.com/ConsenSysQuorum/eea-gateway/validation"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// IdentityResolver returns the enclave key a request acts as. It never
// returns an empty key.
type IdentityResolver interface {
	EnclavePublicKey(ctx context.Context) string
}

type PrivacyController interface {
	SendTransaction(ctx context.Context, tx *privatetx.Transaction, enclavePublicKey string) (privacy.SendResponse, error)
	ValidatePrivateTransaction(ctx context.Context, tx *privatetx.Transaction, groupID, enclavePublicKey string) (validation.Result, error)
}

type MarkerFactory interface {
	Create(enclaveKey string, tx *privatetx.Transaction) (*types.Transaction, error)
}

type TransactionPool interface {
	AddLocalTransaction(tx *types.Transaction) (validation.Result, error)
}

// Pipeline runs the submission stages in order. It keeps no state between
// requests; concurrency control is left to the collaborators.
type Pipeline struct {
	identity IdentityResolver
	privacy  PrivacyController
	markers  MarkerFactory
	pool     TransactionPool
}

func NewPipeline(identity IdentityResolver, privacy PrivacyController, markers MarkerFactory, pool TransactionPool) *Pipeline {
	return &Pipeline{
		identity: identity,
		privacy:  privacy,
		markers:  markers,
		pool:     pool,
	}
}

// SendRawTransaction returns the marker transaction hash. Every error is a
// *Fault; the first failing stage ends the request. A payload stored in the
// enclave stays there when a later stage fails.
func (p *Pipeline) SendRawTransaction(ctx context.Context, params []*string) (common.Hash, error) {
	tx, fault := decodeParams(params)
	if fault != nil {
		return common.Hash{}, fault
	}

	enclavePublicKey := p.identity.EnclavePublicKey(ctx)

	sent, err := p.privacy.SendTransaction(ctx, tx, enclavePublicKey)
	if err != nil {
		if errors.Is(err, privacy.ErrUnauthorized) {
			return common.Hash{}, newFault(FaultUnauthorized, err)
		}
		return common.Hash{}, newFault(FaultEnclave, err)
	}
	log.Debug("private transaction sent to enclave", "enclaveKey", sent.EnclaveKey, "privacyGroupId", sent.PrivacyGroupID)

	res, err := p.privacy.ValidatePrivateTransaction(ctx, tx, sent.PrivacyGroupID, enclavePublicKey)
	if err != nil {
		return common.Hash{}, newFault(FaultEnclave, err)
	}
	if !res.IsValid() {
		return common.Hash{}, invalidTransaction("private validation", res)
	}

	mtx, err := p.markers.Create(sent.EnclaveKey, tx)
	if err != nil {
		return common.Hash{}, newFault(FaultInternal, fmt.Errorf("create marker transaction: %w", err))
	}

	res, err = p.pool.AddLocalTransaction(mtx)
	if err != nil {
		return common.Hash{}, newFault(FaultInternal, fmt.Errorf("add marker transaction: %w", err))
	}
	if !res.IsValid() {
		return common.Hash{}, invalidTransaction("pool admission", res)
	}
	return mtx.Hash(), nil
}

// decodeParams checks the parameter shape, decodes the transaction and
// rejects value transfers. Nothing outside the process is called.
func decodeParams(params []*string) (*privatetx.Transaction, *Fault) {
	if len(params) != 1 || params[0] == nil {
		return nil, newFault(FaultInvalidParams, fmt.Errorf("want one raw transaction, got %d params", len(params)))
	}
	tx, err := privatetx.DecodeHex(*params[0])
	if err != nil {
		return nil, newFault(FaultDecode, err)
	}
	if !tx.HasZeroValue() {
		return nil, newFault(FaultValueNotZero, fmt.Errorf("value %v", tx.Value()))
	}
	return tx, nil
}
