package reconcile

import "sync"

// webhookLocks serializes reconciliation runs per webhook (one webhook per
// form), so two concurrent deliveries cannot read the same stale cursor and
// commit divergent watermarks. Runs for different forms proceed in parallel.
type webhookLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWebhookLocks() *webhookLocks {
	return &webhookLocks{locks: make(map[string]*sync.Mutex)}
}

func (w *webhookLocks) get(webhookID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[webhookID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[webhookID] = l
	}
	return l
}
