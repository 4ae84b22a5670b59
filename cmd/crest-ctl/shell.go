package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/crest-wm/crest-go/pkg/ipc"
	"github.com/crest-wm/crest-go/pkg/transport"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// shell is the interactive crest-ctl session.
type shell struct {
	conn    *transport.ClientConn
	timeout time.Duration
	rl      *readline.Instance
}

func newShell(conn *transport.ClientConn, timeout time.Duration) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "crest> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &shell{conn: conn, timeout: timeout, rl: rl}, nil
}

// Run starts the command loop. Pushed events print through the readline
// Stdout so they do not mangle the prompt.
func (s *shell) Run() {
	defer s.rl.Close()

	go s.printEvents()
	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "info":
			s.call(ipc.MethodGetInfo, nil)

		case "views", "v":
			s.call(ipc.MethodListViews, nil)

		case "outputs", "o":
			s.call(ipc.MethodListOutputs, nil)

		case "wsets":
			s.call(ipc.MethodListWSets, nil)

		case "devices":
			s.call(ipc.MethodListDevices, nil)

		case "view":
			s.callWithID(ipc.MethodViewInfo, args)

		case "output":
			s.callWithID(ipc.MethodOutputInfo, args)

		case "wset":
			s.callWithID(ipc.MethodWSetInfo, args)

		case "focused":
			s.call(ipc.MethodGetFocusedView, nil)
			s.call(ipc.MethodGetFocusedOutput, nil)

		case "focus":
			s.callWithID(ipc.MethodFocusView, args)

		case "close":
			s.callWithID(ipc.MethodCloseView, args)

		case "device":
			s.cmdDevice(args)

		case "move":
			s.cmdMove(args)

		case "sticky":
			s.cmdSticky(args)

		case "workspace", "ws":
			s.cmdWorkspace(args)

		case "watch":
			s.cmdWatch(args)

		case "call":
			s.cmdCall(args)

		case "exit", "quit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (try \"help\")\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprint(s.rl.Stdout(), `Commands:
  info                       Daemon build info, methods and event names
  views | outputs | wsets | devices
                             List resources
  view|output|wset <id>      Describe one resource
  focused                    Show focused view and output
  focus <id>                 Focus a view
  close <id>                 Close a view
  move <view-id> <output-id> Move a view to an output
  sticky <id> on|off         Toggle view stickiness
  device <id> on|off         Enable or disable an input device
  workspace <x> <y> [output-id] [view-id]
                             Switch workspace, optionally carrying a view
  watch [event ...]          Subscribe to events (no names = everything)
  call <method> [json]       Raw method call
  help                       Show this help
  exit                       Quit
`)
}

// printEvents drains the pushed event channel for the connection's
// lifetime.
func (s *shell) printEvents() {
	for ev := range s.conn.Events() {
		name, _ := ev[wire.EventKey].(string)
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(s.rl.Stdout(), "[event %s] %s\n", name, data)
	}
}

func (s *shell) call(method string, data wire.Object) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// CallRaw so the list methods, which respond with arrays, print too.
	resp, err := s.conn.CallRaw(ctx, method, data)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Call failed: %v\n", err)
		return
	}
	s.printResponse(resp)
}

func (s *shell) printResponse(resp any) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Failed to render response: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), string(data))
}

func (s *shell) callWithID(method string, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: <command> <id>")
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid id: %s\n", args[0])
		return
	}
	s.call(method, wire.Object{"id": id})
}

func (s *shell) cmdDevice(args []string) {
	id, enabled, ok := s.parseIDOnOff(args, "device <id> on|off")
	if !ok {
		return
	}
	s.call(ipc.MethodConfigureDevice, wire.Object{"id": id, "enabled": enabled})
}

func (s *shell) cmdSticky(args []string) {
	id, sticky, ok := s.parseIDOnOff(args, "sticky <id> on|off")
	if !ok {
		return
	}
	s.call(ipc.MethodConfigureView, wire.Object{"id": id, "sticky": sticky})
}

func (s *shell) parseIDOnOff(args []string, usage string) (uint64, bool, bool) {
	if len(args) != 2 {
		fmt.Fprintf(s.rl.Stdout(), "Usage: %s\n", usage)
		return 0, false, false
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid id: %s\n", args[0])
		return 0, false, false
	}
	switch args[1] {
	case "on":
		return id, true, true
	case "off":
		return id, false, true
	default:
		fmt.Fprintf(s.rl.Stdout(), "Usage: %s\n", usage)
		return 0, false, false
	}
}

func (s *shell) cmdMove(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: move <view-id> <output-id>")
		return
	}
	viewID, err1 := strconv.ParseUint(args[0], 10, 32)
	outputID, err2 := strconv.ParseUint(args[1], 10, 32)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(s.rl.Stdout(), "Usage: move <view-id> <output-id>")
		return
	}
	s.call(ipc.MethodConfigureView, wire.Object{"id": viewID, "output_id": outputID})
}

func (s *shell) cmdWorkspace(args []string) {
	if len(args) < 2 || len(args) > 4 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: workspace <x> <y> [output-id] [view-id]")
		return
	}
	x, err1 := strconv.Atoi(args[0])
	y, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(s.rl.Stdout(), "Usage: workspace <x> <y> [output-id] [view-id]")
		return
	}

	data := wire.Object{"x": x, "y": y}
	if len(args) >= 3 {
		outputID, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid output id: %s\n", args[2])
			return
		}
		data["output_id"] = outputID
	} else {
		// No output given: target the focused output.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		resp, err := s.conn.Call(ctx, ipc.MethodGetFocusedOutput, nil)
		cancel()
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Call failed: %v\n", err)
			return
		}
		info, _ := resp["info"].(map[string]any)
		if info == nil {
			fmt.Fprintln(s.rl.Stdout(), "No focused output")
			return
		}
		data["output_id"] = info["id"]
	}
	if len(args) == 4 {
		viewID, err := strconv.ParseUint(args[3], 10, 32)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid view id: %s\n", args[3])
			return
		}
		data["view-id"] = viewID
	}

	s.call(ipc.MethodSetWorkspace, data)
}

func (s *shell) cmdWatch(args []string) {
	data := wire.Object{}
	if len(args) > 0 {
		events := make([]any, len(args))
		for i, name := range args {
			events[i] = name
		}
		data["events"] = events
	}
	s.call(ipc.MethodWatch, data)
}

func (s *shell) cmdCall(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: call <method> [json]")
		return
	}
	data := wire.Object{}
	if len(args) > 1 {
		raw := strings.Join(args[1:], " ")
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid JSON data: %v\n", err)
			return
		}
	}
	s.call(args[0], data)
}

// Stdout exposes the prompt-coordinated writer, for callers that want
// to interleave their own output with the shell.
func (s *shell) Stdout() io.Writer {
	return s.rl.Stdout()
}
