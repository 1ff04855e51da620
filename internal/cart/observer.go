package cart

import "sync"

// Observer receives cart snapshots after every transition, local or remote.
// A slow observer skips intermediate states and always sees the latest one.
type Observer struct {
	cart *Cart
	ch   chan State
	once sync.Once
}

// C delivers snapshots; it is closed by Close or when the cart shuts down.
func (o *Observer) C() <-chan State { return o.ch }

// Close detaches the observer.
func (o *Observer) Close() {
	o.cart.obsMu.Lock()
	defer o.cart.obsMu.Unlock()
	o.closeLocked()
}

func (o *Observer) closeLocked() {
	o.once.Do(func() {
		delete(o.cart.observers, o)
		close(o.ch)
	})
}

// Subscribe registers a local observer.
func (c *Cart) Subscribe() *Observer {
	o := &Observer{cart: c, ch: make(chan State, c.obsBuffer)}
	c.obsMu.Lock()
	c.observers[o] = struct{}{}
	c.obsMu.Unlock()
	return o
}

// Close detaches every observer.
func (c *Cart) Close() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	for o := range c.observers {
		o.closeLocked()
	}
}

func (c *Cart) notify(s State) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	for o := range c.observers {
		offerState(o.ch, s.clone())
	}
}

func offerState(ch chan State, s State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
