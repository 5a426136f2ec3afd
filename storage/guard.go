package storage

import "fmt"

type txState uint8

const (
	txActive txState = iota
	txCommitted
	txRolledBack
)

func (s txState) String() string {
	switch s {
	case txActive:
		return "active"
	case txCommitted:
		return "committed"
	case txRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// GuardedTransaction wraps a Transaction and enforces its lifecycle. Any
// call after Commit or Rollback, or after the backing storage was closed,
// panics: both are programming errors in the caller.
//
// A GuardedTransaction is owned by a single goroutine.
type GuardedTransaction struct {
	tx       Transaction
	isClosed func() bool
	state    txState
}

func NewGuardedTransaction(tx Transaction, isClosed func() bool) *GuardedTransaction {
	return &GuardedTransaction{
		tx:       tx,
		isClosed: isClosed,
		state:    txActive,
	}
}

func (g *GuardedTransaction) Put(seg Segment, key, value []byte) error {
	g.check("put")
	return g.tx.Put(seg, key, value)
}

func (g *GuardedTransaction) Remove(seg Segment, key []byte) error {
	g.check("remove")
	return g.tx.Remove(seg, key)
}

// Commit marks the transaction completed before committing, so a failed
// commit cannot be retried.
func (g *GuardedTransaction) Commit() error {
	g.check("commit")
	g.state = txCommitted
	return g.tx.Commit()
}

func (g *GuardedTransaction) Rollback() {
	g.check("rollback")
	g.state = txRolledBack
	g.tx.Rollback()
}

func (g *GuardedTransaction) check(op string) {
	if g.state != txActive {
		panic(fmt.Sprintf("storage: cannot %s a %s transaction", op, g.state))
	}
	if g.isClosed() {
		panic(fmt.Sprintf("storage: cannot %s on a closed storage", op))
	}
}
