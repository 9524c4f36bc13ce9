package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// invoiceLocker serializes mutations per invoice id. All aggregate
// recomputation for one invoice happens under its lock; no cross-invoice
// locking exists, so unrelated invoices never contend.
type invoiceLocker struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// Lock acquires the mutex for the invoice and returns its unlock func.
func (l *invoiceLocker) Lock(id uuid.UUID) func() {
	v, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
