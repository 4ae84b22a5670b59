// Package service provides high-level orchestration for the Crest
// control-plane daemon.
//
// Daemon ties the lower-level components into one running service:
//   - the compositor state tree (pkg/state)
//   - the single-consumer processing loop (pkg/eventloop)
//   - the unix socket server (pkg/transport)
//   - the method repository and event rules (pkg/ipc)
//   - protocol logging (pkg/log)
//
// Every request, subscription change and event dispatch executes on the
// processing loop; the transport's connection goroutines only decode
// frames and post closures. Each connection gets a dedicated writer
// goroutine so a slow client cannot stall the loop.
//
// Example usage:
//
//	cfg := config.Default()
//	daemon, err := service.NewDaemon(cfg, logger)
//	daemon.Start(ctx)
//	defer daemon.Stop()
//
//	// Drive compositor state from the hosting process:
//	daemon.Post(func() {
//	    daemon.Core().AddOutput("DP-1", state.Geometry{Width: 1920, Height: 1080})
//	})
package service
