// Package privacy stores private transactions in the enclave, validates them
// against private state and keeps private nonces in step with admitted
// marker transactions.
package privacy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ConsenSysQuorum/eea-gateway/enclave"
	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/marker"
	"github.com/ConsenSysQuorum/eea-gateway/privatetx"
	"github.com/ConsenSysQuorum/eea-gateway/validation"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultPendingCacheSize = 4096

// ErrUnauthorized is returned when the caller's enclave key may not act for
// the transaction's privateFrom.
var ErrUnauthorized = errors.New("enclave key not authorized for privateFrom")

type Enclave interface {
	Send(ctx context.Context, payload []byte, from string, to []string) (string, error)
	SendToGroup(ctx context.Context, payload []byte, from, groupID string) (string, error)
	Receive(ctx context.Context, key, to string) (*enclave.ReceiveResponse, error)
}

type NonceStore interface {
	Get(groupID string, sender common.Address) (uint64, error)
	Advance(groupID string, sender common.Address, next uint64) (uint64, error)
}

// SendResponse is what the enclave returned for a stored private
// transaction.
type SendResponse struct {
	EnclaveKey     string
	PrivacyGroupID string
}

type Config struct {
	ChainID        *big.Int
	MultiTenancy   bool
	Allowlist      []common.Address
	PrivacyAddress common.Address
	// PendingCacheSize bounds the submissions waiting for their marker
	// transaction; DefaultPendingCacheSize if zero.
	PendingCacheSize int
}

type pendingSubmission struct {
	groupID string
	sender  common.Address
	nonce   uint64
}

type Controller struct {
	enclave        Enclave
	nonces         NonceStore
	chainID        *big.Int
	multiTenancy   bool
	allowlist      map[common.Address]struct{}
	privacyAddress common.Address
	pending        *lru.Cache[string, pendingSubmission]
}

func NewController(cfg Config, e Enclave, nonces NonceStore) (*Controller, error) {
	size := cfg.PendingCacheSize
	if size == 0 {
		size = DefaultPendingCacheSize
	}
	pending, err := lru.New[string, pendingSubmission](size)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		enclave:        e,
		nonces:         nonces,
		chainID:        cfg.ChainID,
		multiTenancy:   cfg.MultiTenancy,
		privacyAddress: cfg.PrivacyAddress,
		pending:        pending,
	}
	if len(cfg.Allowlist) > 0 {
		c.allowlist = make(map[common.Address]struct{}, len(cfg.Allowlist))
		for _, a := range cfg.Allowlist {
			c.allowlist[a] = struct{}{}
		}
	}
	return c, nil
}

// SendTransaction stores the RLP of tx in the enclave on behalf of
// enclavePublicKey. For a private-for transaction the privacy group the
// enclave created is read back with a receive call.
func (c *Controller) SendTransaction(ctx context.Context, tx *privatetx.Transaction, enclavePublicKey string) (SendResponse, error) {
	if c.multiTenancy && tx.PrivateFrom() != enclavePublicKey {
		return SendResponse{}, fmt.Errorf("%w: privateFrom %s", ErrUnauthorized, tx.PrivateFrom())
	}
	payload, err := tx.MarshalBinary()
	if err != nil {
		return SendResponse{}, err
	}

	var resp SendResponse
	if tx.HasPrivacyGroup() {
		resp.PrivacyGroupID = tx.PrivacyGroupID()
		if resp.EnclaveKey, err = c.enclave.SendToGroup(ctx, payload, tx.PrivateFrom(), resp.PrivacyGroupID); err != nil {
			return SendResponse{}, err
		}
	} else {
		if resp.EnclaveKey, err = c.enclave.Send(ctx, payload, tx.PrivateFrom(), tx.PrivateFor()); err != nil {
			return SendResponse{}, err
		}
		received, err := c.enclave.Receive(ctx, resp.EnclaveKey, enclavePublicKey)
		if err != nil {
			return SendResponse{}, err
		}
		resp.PrivacyGroupID = received.PrivacyGroupID
	}

	if sender, err := tx.Sender(c.chainID); err == nil {
		c.pending.Add(resp.EnclaveKey, pendingSubmission{groupID: resp.PrivacyGroupID, sender: sender, nonce: tx.Nonce()})
	}
	log.Debug("private transaction stored", "enclaveKey", resp.EnclaveKey, "privacyGroupId", resp.PrivacyGroupID)
	return resp, nil
}

// ValidatePrivateTransaction checks tx against the private state of
// groupID: signature, sender allowlist and private nonce. The error is
// reserved for failures reading that state.
func (c *Controller) ValidatePrivateTransaction(ctx context.Context, tx *privatetx.Transaction, groupID, enclavePublicKey string) (validation.Result, error) {
	sender, err := tx.Sender(c.chainID)
	if err != nil {
		return validation.Invalid(validation.InvalidSignature, err.Error()), nil
	}
	if c.allowlist != nil {
		if _, ok := c.allowlist[sender]; !ok {
			return validation.Invalid(validation.TxSenderNotAuthorized, sender.Hex()), nil
		}
	}
	next, err := c.nonces.Get(groupID, sender)
	if err != nil {
		return validation.Result{}, err
	}
	switch {
	case tx.Nonce() < next:
		return validation.Invalid(validation.NonceTooLow, fmt.Sprintf("expected %d got %d", next, tx.Nonce())), nil
	case tx.Nonce() > next:
		return validation.Invalid(validation.IncorrectNonce, fmt.Sprintf("expected %d got %d", next, tx.Nonce())), nil
	}
	return validation.Valid(), nil
}

// MarkerAdmitted advances the private nonce of the submission whose marker
// transaction mtx was admitted to the pool. It is registered as a pool
// admission hook, so the nonce moves before the submitting call returns.
func (c *Controller) MarkerAdmitted(mtx *types.Transaction, _ common.Address) {
	key, ok := marker.EnclaveKey(mtx, c.privacyAddress)
	if !ok {
		return
	}
	p, ok := c.pending.Get(key)
	if !ok {
		log.Debug("marker transaction for unknown submission", "hash", mtx.Hash(), "enclaveKey", key)
		return
	}
	c.pending.Remove(key)
	n, err := c.nonces.Advance(p.groupID, p.sender, p.nonce+1)
	if err != nil {
		log.Error("failed to advance private nonce", "privacyGroupId", p.groupID, "sender", p.sender, "err", err)
		return
	}
	log.Debug("private nonce advanced", "privacyGroupId", p.groupID, "sender", p.sender, "nonce", n)
}
