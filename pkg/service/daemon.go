package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crest-wm/crest-go/pkg/config"
	"github.com/crest-wm/crest-go/pkg/eventloop"
	"github.com/crest-wm/crest-go/pkg/ipc"
	"github.com/crest-wm/crest-go/pkg/log"
	"github.com/crest-wm/crest-go/pkg/state"
	"github.com/crest-wm/crest-go/pkg/transport"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// Daemon is the control-plane service: one state tree, one processing
// loop, one control socket.
type Daemon struct {
	cfg    config.Config
	logger log.Logger

	core   *state.Core
	loop   *eventloop.Loop
	repo   *ipc.Repository
	rules  *ipc.Rules
	server *transport.Server

	// clients is loop-confined: every access happens on d.loop.
	clients map[string]*clientConn
}

// NewDaemon creates a daemon from a configuration. A nil logger
// disables protocol logging.
func NewDaemon(cfg config.Config, logger log.Logger) (*Daemon, error) {
	if logger == nil {
		logger = log.NoopLogger{}
	}

	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		core:    state.NewCore(),
		loop:    eventloop.New(),
		repo:    ipc.NewRepository(),
		clients: make(map[string]*clientConn),
	}
	d.rules = ipc.NewRules(d.core, d.repo)

	server, err := transport.NewServer(transport.ServerConfig{
		SocketPath:     cfg.SocketPath,
		MaxMessageSize: cfg.MaxMessageSize,
		Logger:         logger,
		OnConnect:      d.onConnect,
		OnDisconnect:   d.onDisconnect,
		OnMessage:      d.onMessage,
		OnError:        d.onError,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	d.server = server

	return d, nil
}

// Core returns the compositor state tree. Mutate it only through Post
// or Call; the tree is confined to the processing loop.
func (d *Daemon) Core() *state.Core {
	return d.core
}

// Rules returns the IPC rules instance.
func (d *Daemon) Rules() *ipc.Rules {
	return d.rules
}

// SocketPath returns the control socket the daemon listens on.
func (d *Daemon) SocketPath() string {
	return d.cfg.SocketPath
}

// Post schedules fn on the processing loop and returns immediately.
func (d *Daemon) Post(fn func()) error {
	return d.loop.Post(fn)
}

// Call runs fn on the processing loop and waits for it to finish.
func (d *Daemon) Call(fn func()) error {
	return d.loop.Call(fn)
}

// Start brings the daemon up: rules, loop, then socket.
func (d *Daemon) Start(ctx context.Context) error {
	d.rules.Start()
	d.loop.Start(ctx)

	if err := d.server.Start(ctx); err != nil {
		d.loop.Stop()
		return err
	}
	return nil
}

// Stop tears the daemon down: socket first so no new work arrives, then
// the rules on the loop, then the loop itself.
func (d *Daemon) Stop() error {
	err := d.server.Stop()
	d.loop.Call(d.rules.Stop)
	d.loop.Stop()
	return err
}

func (d *Daemon) onConnect(conn *transport.ServerConn) {
	d.loop.Post(func() {
		d.clients[conn.ConnID()] = newClientConn(conn, d.logger)
	})
}

func (d *Daemon) onDisconnect(conn *transport.ServerConn) {
	d.loop.Post(func() {
		cl, ok := d.clients[conn.ConnID()]
		if !ok {
			return
		}
		delete(d.clients, conn.ConnID())
		cl.close()
		d.repo.NotifyClientDisconnected(cl)
	})
}

// onMessage runs on the connection's read goroutine; everything of
// substance is posted to the loop.
func (d *Daemon) onMessage(conn *transport.ServerConn, msg []byte) {
	d.loop.Post(func() {
		cl, ok := d.clients[conn.ConnID()]
		if !ok {
			return
		}

		start := time.Now()

		req, err := wire.DecodeRequest(msg)
		if err != nil {
			resp := wire.Error(string(ipc.KindValidation), err.Error())
			d.logResponse(cl.ID(), "", resp, time.Since(start))
			cl.Send(resp)
			return
		}

		d.logRequest(cl.ID(), req)
		resp := d.repo.Dispatch(cl, req)
		d.logResponse(cl.ID(), req.Method, resp, time.Since(start))
		cl.Send(resp)
	})
}

func (d *Daemon) onError(conn *transport.ServerConn, err error) {
	connID := ""
	if conn != nil {
		connID = conn.ConnID()
	}
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: "connection read",
		},
	})
}

func (d *Daemon) logRequest(connID string, req *wire.Request) {
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message: &log.MessageEvent{
			Type:    log.MessageTypeRequest,
			Method:  req.Method,
			Payload: req.Data,
		},
	})
}

func (d *Daemon) logResponse(connID, method string, resp any, elapsed time.Duration) {
	errorKind := ""
	if obj, ok := resp.(wire.Object); ok && wire.IsError(obj) {
		errorKind, _ = obj["kind"].(string)
	}
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message: &log.MessageEvent{
			Type:           log.MessageTypeResponse,
			Method:         method,
			ErrorKind:      errorKind,
			Payload:        resp,
			ProcessingTime: &elapsed,
		},
	})
}
