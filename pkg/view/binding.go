package view

import "sync"

// Listener receives mirrored updates from a [BindingManager].
type Listener interface {
	// ApplyViewport sets the horizontal viewport to [x, x+width).
	ApplyViewport(x, width float64)
	// ApplyTimelineCursor moves the timeline cursor; nil hides it.
	ApplyTimelineCursor(x *float64)
}

// BindingManager mirrors viewport and timeline cursor changes across a group
// of views. The source of an update is never notified of its own change,
// and updates published while listeners are applying one are dropped.
type BindingManager struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
	applying  bool
}

// NewBindingManager returns an empty group.
func NewBindingManager() *BindingManager {
	return &BindingManager{listeners: make(map[int]Listener)}
}

// Subscribe adds l to the group. The returned func removes it and is safe
// to call more than once.
func (b *BindingManager) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = l
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
			for i, o := range b.order {
				if o == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Len returns the number of subscribed listeners.
func (b *BindingManager) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// NotifyViewport broadcasts a horizontal viewport change from src.
func (b *BindingManager) NotifyViewport(src Listener, x, width float64) {
	b.broadcast(src, func(l Listener) { l.ApplyViewport(x, width) })
}

// NotifyTimelineCursor broadcasts a timeline cursor change from src.
func (b *BindingManager) NotifyTimelineCursor(src Listener, x *float64) {
	b.broadcast(src, func(l Listener) {
		if x == nil {
			l.ApplyTimelineCursor(nil)
			return
		}
		v := *x
		l.ApplyTimelineCursor(&v)
	})
}

func (b *BindingManager) broadcast(src Listener, apply func(Listener)) {
	b.mu.Lock()
	if b.applying {
		b.mu.Unlock()
		return
	}
	b.applying = true
	targets := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		if l := b.listeners[id]; l != src {
			targets = append(targets, l)
		}
	}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.applying = false
		b.mu.Unlock()
	}()
	for _, l := range targets {
		apply(l)
	}
}
