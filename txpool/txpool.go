// Package txpool is the local pool marker transactions are admitted to. It
// validates a transaction against account state, advances the sender's
// pending nonce and hands the transaction to the admission hooks.
//
// The pool does not retain transactions: propagation and block building are
// done by the node behind the gateway. Its only per-sender state is the next
// pending nonce, so memory grows with the number of distinct local senders,
// which in practice is the marker signer alone.
package txpool

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/validation"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	TxGas                 uint64 = 21000
	TxGasContractCreation uint64 = 53000
	TxDataZeroGas         uint64 = 4
	TxDataNonZeroGas      uint64 = 16
)

// StateReader gives the pool the confirmed state of an account.
type StateReader interface {
	GetNonce(addr common.Address) (uint64, error)
	GetBalance(addr common.Address) (*big.Int, error)
}

// AdmissionHook is called with every admitted transaction and its sender
// before AddLocalTransaction returns.
type AdmissionHook func(tx *types.Transaction, from common.Address)

type Config struct {
	ChainID       *big.Int
	BlockGasLimit uint64
	// Allowlist, if not empty, is the set of senders allowed to submit.
	Allowlist []common.Address
}

type TxPool struct {
	signer        types.Signer
	state         StateReader
	blockGasLimit uint64
	allowlist     map[common.Address]struct{}

	mu       sync.Mutex
	next     map[common.Address]uint64 // pending nonce of senders with admitted transactions
	leases   map[common.Address]chan struct{}
	reserved map[common.Address]*reservation
	hooks    []AdmissionHook
}

// reservation holds a sender's lease until the transaction carrying the
// reserved nonce is added or the caller gives it up.
type reservation struct {
	nonce uint64
	lease chan struct{}
	once  sync.Once
}

func (r *reservation) done() {
	r.once.Do(func() { <-r.lease })
}

func New(cfg Config, state StateReader) *TxPool {
	p := &TxPool{
		signer:        types.NewEIP155Signer(cfg.ChainID),
		state:         state,
		blockGasLimit: cfg.BlockGasLimit,
		next:          make(map[common.Address]uint64),
		leases:        make(map[common.Address]chan struct{}),
		reserved:      make(map[common.Address]*reservation),
	}
	if len(cfg.Allowlist) > 0 {
		p.allowlist = make(map[common.Address]struct{}, len(cfg.Allowlist))
		for _, a := range cfg.Allowlist {
			p.allowlist[a] = struct{}{}
		}
	}
	return p
}

// OnAdmitted registers fn. Hooks run in registration order on the admitting
// goroutine, outside the pool lock.
func (p *TxPool) OnAdmitted(fn AdmissionHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, fn)
}

// ReserveNonce returns the pending nonce of addr and holds it for the
// caller: other reservations for addr block until the transaction carrying
// the nonce goes through AddLocalTransaction, whatever the outcome, or
// release is called. Calling release after the add is a no-op.
func (p *TxPool) ReserveNonce(addr common.Address) (uint64, func(), error) {
	p.mu.Lock()
	lease, ok := p.leases[addr]
	if !ok {
		lease = make(chan struct{}, 1)
		p.leases[addr] = lease
	}
	p.mu.Unlock()

	lease <- struct{}{}

	p.mu.Lock()
	defer p.mu.Unlock()
	nonce, err := p.pendingNonce(addr)
	if err != nil {
		<-lease
		return 0, nil, err
	}
	r := &reservation{nonce: nonce, lease: lease}
	p.reserved[addr] = r
	return nonce, func() { p.release(addr, r) }, nil
}

func (p *TxPool) release(addr common.Address, r *reservation) {
	p.mu.Lock()
	if p.reserved[addr] == r {
		delete(p.reserved, addr)
	}
	p.mu.Unlock()
	r.done()
}

// AddLocalTransaction validates tx and, if valid, advances the sender's
// pending nonce and runs the admission hooks. Admission is serialised so
// that two transactions can never take the same sender nonce. The error is
// reserved for failures reading state.
func (p *TxPool) AddLocalTransaction(tx *types.Transaction) (validation.Result, error) {
	from, err := types.Sender(p.signer, tx)
	if err != nil {
		return validation.Invalid(validation.InvalidSignature, err.Error()), nil
	}

	p.mu.Lock()
	r := p.reserved[from]
	if r != nil && r.nonce == tx.Nonce() {
		delete(p.reserved, from)
		defer r.done()
	}
	res, err := p.validateTx(tx, from)
	if err != nil || !res.IsValid() {
		p.mu.Unlock()
		if err == nil {
			log.Debug("transaction rejected", "hash", tx.Hash(), "reason", res)
		}
		return res, err
	}
	p.next[from] = tx.Nonce() + 1
	hooks := p.hooks
	p.mu.Unlock()

	log.Debug("transaction admitted", "hash", tx.Hash(), "from", from, "nonce", tx.Nonce())
	for _, fn := range hooks {
		fn(tx, from)
	}
	return validation.Valid(), nil
}

// validateTx runs the admission checks in order; the first failing one
// decides the reason. Callers hold p.mu.
func (p *TxPool) validateTx(tx *types.Transaction, from common.Address) (validation.Result, error) {
	if p.allowlist != nil {
		if _, ok := p.allowlist[from]; !ok {
			return validation.Invalid(validation.TxSenderNotAuthorized, from.Hex()), nil
		}
	}
	if tx.Gas() > p.blockGasLimit {
		return validation.Invalid(validation.ExceedsBlockGasLimit,
			fmt.Sprintf("gas %d, block gas limit %d", tx.Gas(), p.blockGasLimit)), nil
	}
	if intrinsic := IntrinsicGas(tx.Data(), tx.To() == nil); tx.Gas() < intrinsic {
		return validation.Invalid(validation.IntrinsicGasExceedsGasLimit,
			fmt.Sprintf("intrinsic gas %d, gas %d", intrinsic, tx.Gas())), nil
	}

	next, err := p.pendingNonce(from)
	if err != nil {
		return validation.Result{}, err
	}
	switch {
	case tx.Nonce() < next:
		return validation.Invalid(validation.NonceTooLow,
			fmt.Sprintf("expected %d got %d", next, tx.Nonce())), nil
	case tx.Nonce() > next:
		return validation.Invalid(validation.IncorrectNonce,
			fmt.Sprintf("expected %d got %d", next, tx.Nonce())), nil
	}

	balance, err := p.state.GetBalance(from)
	if err != nil {
		return validation.Result{}, err
	}
	if cost := tx.Cost(); cost.Cmp(balance) > 0 {
		return validation.Invalid(validation.UpfrontCostExceedsBalance,
			fmt.Sprintf("cost %v, balance %v", cost, balance)), nil
	}
	return validation.Valid(), nil
}

// pendingNonce is the larger of the confirmed nonce and the nonce after the
// last admitted transaction. Callers hold p.mu.
func (p *TxPool) pendingNonce(addr common.Address) (uint64, error) {
	nonce, err := p.state.GetNonce(addr)
	if err != nil {
		return 0, err
	}
	if next, ok := p.next[addr]; ok && next > nonce {
		return next, nil
	}
	return nonce, nil
}

// IntrinsicGas is the gas charged before any execution: the base cost plus
// the calldata cost.
func IntrinsicGas(data []byte, isContractCreation bool) uint64 {
	gas := TxGas
	if isContractCreation {
		gas = TxGasContractCreation
	}
	var nz uint64
	for _, b := range data {
		if b != 0 {
			nz++
		}
	}
	z := uint64(len(data)) - nz
	return gas + nz*TxDataNonZeroGas + z*TxDataZeroGas
}
