// Package transport provides the unix socket transport for the Crest
// control plane.
//
// The transport layer handles:
//   - Unix domain socket connections (local clients only)
//   - Length-prefixed message framing
//   - Connection identity and lifecycle callbacks
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      JSON Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│     Unix domain socket         │
//	└────────────────────────────────┘
//
// The length prefix is a 4-byte little-endian unsigned integer counting
// the payload bytes that follow. Requests carry a "method" key; pushed
// event envelopes carry an "event" key. There are no message ids:
// responses arrive in request order on each connection.
//
// # Socket discovery
//
// Clients resolve the socket path from the CREST_SOCKET environment
// variable, falling back to crest.socket under XDG_RUNTIME_DIR (or the
// system temporary directory).
package transport
