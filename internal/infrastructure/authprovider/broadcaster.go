package authprovider

import (
	"sync"

	"github.com/clientmax/agency-crm/internal/core/ports"
)

// broadcaster fans auth events out to subscribers. Callbacks run outside the
// lock so a subscriber can unsubscribe from within its own handler; they must
// still only enqueue, never call back into the provider.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func(ports.AuthEvent)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: map[int]func(ports.AuthEvent){}}
}

func (b *broadcaster) subscribe(fn func(ports.AuthEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *broadcaster) publish(ev ports.AuthEvent) {
	b.mu.Lock()
	fns := make([]func(ports.AuthEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
