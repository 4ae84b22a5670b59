package ipc

import (
	"github.com/crest-wm/crest-go/pkg/wire"
)

// Fanout delivers event envelopes to every subscribed client whose
// filter matches. It runs on the event loop like everything else in
// this package; Send on the client is expected to be non-blocking.
type Fanout struct {
	subs *SubscriptionManager
}

// NewFanout creates a fanout over the given subscription table.
func NewFanout(subs *SubscriptionManager) *Fanout {
	return &Fanout{subs: subs}
}

// Dispatch stamps the envelope with the event name and pushes it to
// each matching client in subscription order. The envelope is shared
// between recipients; handlers must not retain and mutate it.
func (f *Fanout) Dispatch(eventName string, envelope wire.Object) {
	if envelope == nil {
		envelope = wire.Object{}
	}
	envelope[wire.EventKey] = eventName
	f.subs.forEachSubscriber(eventName, func(c Client) {
		c.Send(envelope)
	})
}
