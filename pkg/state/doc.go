// Package state holds the compositor-side resource model the control
// plane operates on: views, outputs, workspace sets and input devices,
// plus the signal bus their mutations are announced on.
//
// Everything in this package is loop-confined: the compositor mutates
// state and emits signals on its single processing loop (package
// eventloop), and all signal handlers run synchronously on that loop.
// There is deliberately no locking here; concurrent access from outside
// the loop is a programming error.
//
// The IPC core (package ipc) consumes this package through signal
// connections and read access to the resource structs. It never owns
// resources; it only reacts to their lifecycle.
package state
