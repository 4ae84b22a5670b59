package ipc

import (
	"testing"

	"github.com/crest-wm/crest-go/pkg/state"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// fakeClient records everything sent to it.
type fakeClient struct {
	id   string
	msgs []wire.Object
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Send(msg any) {
	c.msgs = append(c.msgs, msg.(wire.Object))
}

// eventNames extracts the event name of every recorded envelope.
func (c *fakeClient) eventNames() []string {
	names := make([]string, 0, len(c.msgs))
	for _, msg := range c.msgs {
		if name, ok := msg[wire.EventKey].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

func newTestRegistry(names ...string) *SourceRegistry {
	reg := NewSourceRegistry(func() []*state.Output { return nil })
	for _, name := range names {
		reg.Add(&Descriptor{Name: name, Scope: ScopeGlobal})
	}
	return reg
}

func TestSubscribeFilterResolution(t *testing.T) {
	reg := newTestRegistry("view-mapped", "view-unmapped", "view-focused")
	subs := NewSubscriptionManager(reg)
	cl := &fakeClient{id: "c1"}

	subs.Subscribe(cl, []string{"view-mapped", "bogus-event"}, true)

	if !subs.Subscribed(cl, "view-mapped") {
		t.Error("not subscribed to requested event")
	}
	if subs.Subscribed(cl, "view-unmapped") {
		t.Error("subscribed to unrequested event")
	}
	if got := reg.Refcount("view-mapped"); got != 1 {
		t.Errorf("view-mapped refcount = %d, want 1", got)
	}
	if got := reg.Refcount("view-unmapped"); got != 0 {
		t.Errorf("view-unmapped refcount = %d, want 0", got)
	}
}

func TestSubscribeNoFilterEnumeratesAll(t *testing.T) {
	reg := newTestRegistry("view-mapped", "view-unmapped", "view-focused")
	subs := NewSubscriptionManager(reg)
	cl := &fakeClient{id: "c1"}

	subs.Subscribe(cl, nil, false)

	for _, name := range reg.Names() {
		if !subs.Subscribed(cl, name) {
			t.Errorf("not subscribed to %s", name)
		}
		if got := reg.Refcount(name); got != 1 {
			t.Errorf("%s refcount = %d, want 1", name, got)
		}
	}
}

func TestSubscribeBogusOnlyFilterNormalizedToAll(t *testing.T) {
	reg := newTestRegistry("view-mapped", "view-unmapped")
	subs := NewSubscriptionManager(reg)
	cl := &fakeClient{id: "c1"}

	// Nothing in the filter resolves; the outcome must match an absent
	// filter, activation included.
	subs.Subscribe(cl, []string{"bogus", "also-bogus"}, true)

	for _, name := range reg.Names() {
		if !subs.Subscribed(cl, name) {
			t.Errorf("not subscribed to %s", name)
		}
		if got := reg.Refcount(name); got != 1 {
			t.Errorf("%s refcount = %d, want 1", name, got)
		}
	}
}

func TestSubscribeEmptyListNormalizedToAll(t *testing.T) {
	reg := newTestRegistry("view-mapped", "view-unmapped")
	subs := NewSubscriptionManager(reg)
	cl := &fakeClient{id: "c1"}

	subs.Subscribe(cl, []string{}, true)

	if !subs.Subscribed(cl, "view-mapped") || !subs.Subscribed(cl, "view-unmapped") {
		t.Error("empty list did not normalize to the full set")
	}
}

func TestResubscribeReplacesWholesale(t *testing.T) {
	reg := newTestRegistry("view-mapped", "view-unmapped", "view-focused")
	subs := NewSubscriptionManager(reg)
	cl := &fakeClient{id: "c1"}

	subs.Subscribe(cl, []string{"view-mapped", "view-unmapped"}, true)
	subs.Subscribe(cl, []string{"view-unmapped", "view-focused"}, true)

	if got := reg.Refcount("view-mapped"); got != 0 {
		t.Errorf("dropped event refcount = %d, want 0", got)
	}
	if got := reg.Refcount("view-unmapped"); got != 1 {
		t.Errorf("retained event refcount = %d, want 1", got)
	}
	if got := reg.Refcount("view-focused"); got != 1 {
		t.Errorf("added event refcount = %d, want 1", got)
	}
	if subs.Subscribed(cl, "view-mapped") {
		t.Error("still subscribed to dropped event")
	}
	if subs.Count() != 1 {
		t.Errorf("count = %d, want 1", subs.Count())
	}
}

func TestRemoveClientReleasesRefcounts(t *testing.T) {
	reg := newTestRegistry("view-mapped", "view-unmapped")
	subs := NewSubscriptionManager(reg)
	c1 := &fakeClient{id: "c1"}
	c2 := &fakeClient{id: "c2"}

	subs.Subscribe(c1, []string{"view-mapped"}, true)
	subs.Subscribe(c2, []string{"view-mapped"}, true)

	subs.RemoveClient(c1)
	if got := reg.Refcount("view-mapped"); got != 1 {
		t.Errorf("refcount after first removal = %d, want 1", got)
	}

	subs.RemoveClient(c2)
	if got := reg.Refcount("view-mapped"); got != 0 {
		t.Errorf("refcount after last removal = %d, want 0", got)
	}
	if subs.Count() != 0 {
		t.Errorf("count = %d, want 0", subs.Count())
	}

	// Removing an unknown client is a no-op.
	subs.RemoveClient(&fakeClient{id: "ghost"})
}

func TestRefcountMatchesLiveSubscribers(t *testing.T) {
	reg := newTestRegistry("view-mapped", "view-unmapped", "view-focused")
	subs := NewSubscriptionManager(reg)

	clients := []*fakeClient{{id: "a"}, {id: "b"}, {id: "c"}}
	subs.Subscribe(clients[0], []string{"view-mapped"}, true)
	subs.Subscribe(clients[1], nil, false)
	subs.Subscribe(clients[2], []string{"view-mapped", "view-focused"}, true)

	check := func() {
		t.Helper()
		for _, name := range reg.Names() {
			want := 0
			for _, cl := range clients {
				if subs.Subscribed(cl, name) {
					want++
				}
			}
			if got := reg.Refcount(name); got != want {
				t.Errorf("%s refcount = %d, want %d", name, got, want)
			}
		}
	}

	check()
	subs.Subscribe(clients[0], []string{"view-unmapped"}, true)
	check()
	subs.RemoveClient(clients[1])
	check()
	subs.RemoveClient(clients[0])
	subs.RemoveClient(clients[2])
	check()
}

func TestForEachSubscriberOrder(t *testing.T) {
	reg := newTestRegistry("view-mapped")
	subs := NewSubscriptionManager(reg)

	c1 := &fakeClient{id: "c1"}
	c2 := &fakeClient{id: "c2"}
	c3 := &fakeClient{id: "c3"}
	subs.Subscribe(c1, nil, false)
	subs.Subscribe(c2, nil, false)
	subs.Subscribe(c3, nil, false)

	// Resubscribing must not move a client to the back.
	subs.Subscribe(c1, []string{"view-mapped"}, true)

	var got []string
	subs.forEachSubscriber("view-mapped", func(c Client) {
		got = append(got, c.ID())
	})

	want := []string{"c1", "c2", "c3"}
	if len(got) != len(want) {
		t.Fatalf("subscribers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("subscribers = %v, want %v", got, want)
		}
	}
}
