package ipc

// clientSubscription is one client's resolved event filter. The stored
// set is never empty: an empty resolution is normalized to the full
// enumerated set before storing (see Subscribe).
type clientSubscription struct {
	client Client
	events map[string]struct{}
}

func (s *clientSubscription) matches(eventName string) bool {
	// An empty filter matches everything. Stored subscriptions are
	// normalized and never empty, but the predicate is kept complete:
	// it is the documented delivery rule.
	if len(s.events) == 0 {
		return true
	}
	_, ok := s.events[eventName]
	return ok
}

// SubscriptionManager maps each connected client to its resolved set of
// event names and drives the SourceRegistry refcounts on every change.
//
// Invariant: at all times, refcount(E) in the registry equals the
// number of live clients whose stored set contains E.
type SubscriptionManager struct {
	registry *SourceRegistry

	subs  map[string]*clientSubscription // keyed by client ID
	order []string                       // client IDs in first-subscribe order
}

// NewSubscriptionManager creates a manager driving the given registry.
func NewSubscriptionManager(registry *SourceRegistry) *SubscriptionManager {
	return &SubscriptionManager{
		registry: registry,
		subs:     make(map[string]*clientSubscription),
	}
}

// Subscribe installs or replaces the client's subscription.
//
// Resolution: with no filter (hasFilter false), the client subscribes
// to every known event name, as an explicit enumeration. With a filter,
// unrecognized entries are silently dropped. If nothing survives (the
// list was empty, or contained only unknown names) the outcome is
// normalized to the full enumeration, so a typo'd filter behaves
// exactly like no filter, source activation included.
//
// Replacement is wholesale: refcounts for the previous set (if any) are
// decremented first, then incremented for the new set.
func (m *SubscriptionManager) Subscribe(client Client, requested []string, hasFilter bool) {
	resolved := make(map[string]struct{})
	if hasFilter {
		for _, name := range requested {
			if m.registry.Known(name) {
				resolved[name] = struct{}{}
			}
		}
	}
	if len(resolved) == 0 {
		for _, name := range m.registry.Names() {
			resolved[name] = struct{}{}
		}
	}

	id := client.ID()
	if prev, ok := m.subs[id]; ok {
		for name := range prev.events {
			m.registry.Decrease(name)
		}
	} else {
		m.order = append(m.order, id)
	}

	for name := range resolved {
		m.registry.Increase(name)
	}
	m.subs[id] = &clientSubscription{client: client, events: resolved}
}

// RemoveClient tears down the client's subscription, decrementing
// exactly the names recorded in it, exactly once. Safe to call for
// clients that never subscribed.
func (m *SubscriptionManager) RemoveClient(client Client) {
	id := client.ID()
	sub, ok := m.subs[id]
	if !ok {
		return
	}

	for name := range sub.events {
		m.registry.Decrease(name)
	}
	delete(m.subs, id)
	for i, cur := range m.order {
		if cur == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Subscribed reports whether the client's stored filter includes the
// event name.
func (m *SubscriptionManager) Subscribed(client Client, eventName string) bool {
	sub, ok := m.subs[client.ID()]
	return ok && sub.matches(eventName)
}

// Count returns the number of clients with a live subscription.
func (m *SubscriptionManager) Count() int {
	return len(m.subs)
}

// forEachSubscriber invokes fn for every client whose filter matches
// eventName, in first-subscribe order.
func (m *SubscriptionManager) forEachSubscriber(eventName string, fn func(Client)) {
	for _, id := range m.order {
		sub := m.subs[id]
		if sub != nil && sub.matches(eventName) {
			fn(sub.client)
		}
	}
}
