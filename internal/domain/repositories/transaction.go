package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs schema and repository work atomically
type TransactionManager interface {
	// ExecTx runs fn with a transaction in its context. The transaction
	// commits when fn returns nil and rolls back otherwise.
	ExecTx(ctx context.Context, fn TxFn) error
}
