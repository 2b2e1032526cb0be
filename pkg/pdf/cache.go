package pdf

import "sync"

// onceResult memoizes a single compute call. Unlike sync.Once, a failed
// compute does not poison the slot: the next caller retries from scratch.
type onceResult struct {
	mu sync.Mutex
	done bool
	val Object
	err error
}

func (o *onceResult) resolve(compute func() (Object, error)) (Object, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done {
		return o.val, o.err
	}

	val, err := compute()
	if err != nil {
		return nil, err
	}

	o.val, o.done = val, true
	return val, nil
}

// objectCache maps object number to materialized value, memoizing
// resolution with at-most-one population per slot.
type objectCache struct {
	mu sync.Mutex
	slots map[int]*onceResult
}

func newObjectCache() *objectCache {
	return &objectCache{slots: make(map[int]*onceResult)}
}

func (c *objectCache) resolve(objNum int, compute func() (Object, error)) (Object, error) {
	c.mu.Lock()
	slot, ok := c.slots[objNum]
	if !ok {
		slot = &onceResult{}
		c.slots[objNum] = slot
	}
	c.mu.Unlock()

	return slot.resolve(compute)
}
