package overlay

import "sync"

type counter struct {
	mu    sync.Mutex
	done  int
	total int
	fn    func(done, total int)
}

func newCounter(total int, fn func(done, total int)) *counter {
	return &counter{total: total, fn: fn}
}

func (c *counter) add() {
	if c.fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	c.fn(c.done, c.total)
}
