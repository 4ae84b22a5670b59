// Command crest-sim runs the Crest control-plane daemon on top of a
// simulated compositor.
//
// The simulator stands in for a real compositor backend: it creates
// outputs, input devices and views, and keeps mutating them so clients
// have something to query and subscribe to. Everything a client can
// observe goes through the same control socket a real compositor would
// expose.
//
// Usage:
//
//	crest-sim [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-socket string        Control socket path (overrides config and CREST_SOCKET)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  Write a CBOR protocol log to this file (.clog)
//	-simulate             Keep mutating the scene after seeding it (default true)
//
// Examples:
//
//	# Run with defaults and a protocol log
//	crest-sim -protocol-log session.clog
//
//	# Run on an explicit socket with a quiet console
//	crest-sim -socket /tmp/crest-test.socket -log-level warn
package main

import (
	"context"
	"flag"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/crest-wm/crest-go/pkg/config"
	"github.com/crest-wm/crest-go/pkg/log"
	"github.com/crest-wm/crest-go/pkg/service"
	"github.com/crest-wm/crest-go/pkg/version"
)

func main() {
	configFile := flag.String("config", "", "Configuration file path (YAML)")
	socket := flag.String("socket", "", "Control socket path (overrides config and CREST_SOCKET)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	protocolLog := flag.String("protocol-log", "", "Write a CBOR protocol log to this file (.clog)")
	simulate := flag.Bool("simulate", true, "Keep mutating the scene after seeding it")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			stdlog.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *socket != "" {
		cfg.SocketPath = *socket
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *protocolLog != "" {
		cfg.Log.File = *protocolLog
	}

	logger, closeLogger, err := buildLogger(cfg.Log)
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogger()

	stdlog.Printf("crest-sim %s (api %d)", version.Version, version.APIVersion)
	stdlog.Printf("Control socket: %s", cfg.SocketPath)

	daemon, err := service.NewDaemon(cfg, logger)
	if err != nil {
		stdlog.Fatalf("Failed to create daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := daemon.Start(ctx); err != nil {
		stdlog.Fatalf("Failed to start daemon: %v", err)
	}

	seedScene(daemon)
	if *simulate {
		go runSimulation(ctx, daemon)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stdlog.Println("Shutting down")
	cancel()
	if err := daemon.Stop(); err != nil {
		stdlog.Printf("Shutdown error: %v", err)
	}
}

// buildLogger assembles the protocol logger from the log configuration:
// an optional CBOR file log plus an optional console log.
func buildLogger(cfg config.LogConfig) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if cfg.File != "" {
		fl, err := log.NewFileLogger(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeFn = func() { fl.Close() }
	}

	if cfg.Console {
		level := slog.LevelInfo
		switch cfg.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}
