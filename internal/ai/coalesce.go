package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// coalescer deduplicates in-flight provider calls: a request identical to
// one already running joins it instead of issuing a second call. Keys are
// content hashes of the request payload, owned by the client rather than
// any ambient shared state.
type coalescer struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	done   chan struct{}
	result string
	err    error
}

func newCoalescer() *coalescer {
	return &coalescer{calls: make(map[string]*call)}
}

func (c *coalescer) do(key string, fn func() (string, error)) (string, error) {
	c.mu.Lock()
	if existing, ok := c.calls[key]; ok {
		c.mu.Unlock()
		<-existing.done
		return existing.result, existing.err
	}
	current := &call{done: make(chan struct{})}
	c.calls[key] = current
	c.mu.Unlock()

	current.result, current.err = fn()
	close(current.done)

	c.mu.Lock()
	delete(c.calls, key)
	c.mu.Unlock()

	return current.result, current.err
}

func requestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
