// Package wire defines the JSON wire format for the Crest IPC protocol.
//
// Messages are JSON objects transmitted over a unix domain socket with a
// 4-byte little-endian length prefix (see package transport).
//
// # Message Shapes
//
// There are three message shapes:
//   - Request: client to compositor: {"method": "...", "data": {...}}
//   - Response: compositor to client, any JSON object; responses are
//     delivered in request order on the connection, there is no
//     message-id correlation
//   - Event: compositor to client, any JSON object carrying an "event"
//     key; pushed asynchronously to watching clients
//
// Clients distinguish events from responses by peeking for the "event"
// key with PeekKind. This mirrors how responses and pushed messages
// share one socket in the compositor's native protocol.
package wire
