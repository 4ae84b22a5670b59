// Package ipc implements the control-plane surface of the compositor:
// the method dispatcher clients call into, and the event subscription
// multiplexer that shares lazily-activated compositor signals across
// any number of watching clients.
//
// # Architecture
//
//	Repository   routes method requests to handlers
//	Rules        the control-plane plugin: methods + event wiring
//	SourceRegistry  refcounted activation of event sources
//	SubscriptionManager  per-client event filters
//	Fanout       delivery of event envelopes to matching clients
//
// The SourceRegistry holds one descriptor per event name. A descriptor
// knows how to connect its underlying compositor signal - once globally,
// or once per output for per-output sources - and carries a reference
// count driven by the SubscriptionManager. A source is connected exactly
// while at least one client wants it, and per-output sources are
// re-applied retroactively when outputs appear.
//
// Everything in this package is loop-confined (see package eventloop):
// subscribe, disconnect, fan-out and method dispatch each run to
// completion atomically with respect to one another, so no locking is
// needed and clients observe one total order.
package ipc
