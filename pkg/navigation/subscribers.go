package navigation

import "sync"

// subscribers is an ordered set of navigation handlers.
type subscribers struct {
	mu   sync.Mutex
	next uint64
	subs []subscriber
}

type subscriber struct {
	id uint64
	fn func(Navigation)
}

func (s *subscribers) add(fn func(Navigation)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *subscribers) notify(nav Navigation) {
	s.mu.Lock()
	fns := make([]func(Navigation), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(nav)
	}
}

// outbox delivers committed navigations to subscribers in commit order.
// Navigations are queued under the commit lock and delivered outside it,
// so a subscriber may start a navigation of its own.
type outbox struct {
	mu       sync.Mutex
	queue    []Navigation
	draining bool
}

func (o *outbox) put(nav Navigation) {
	o.mu.Lock()
	o.queue = append(o.queue, nav)
	o.mu.Unlock()
}

// drain delivers queued navigations unless a delivery is already in
// progress, in which case that delivery picks them up before it ends.
func (o *outbox) drain(deliver func(Navigation)) {
	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	for len(o.queue) > 0 {
		nav := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()
		deliver(nav)
		o.mu.Lock()
	}
	o.draining = false
	o.mu.Unlock()
}
