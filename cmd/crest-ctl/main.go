// Command crest-ctl talks to a running Crest daemon over the control
// socket.
//
// With arguments it performs a single method call and prints the JSON
// response; without arguments it drops into an interactive shell with
// readline editing, where pushed events print as they arrive.
//
// Usage:
//
//	crest-ctl [flags] [method [json-data]]
//
// Flags:
//
//	-socket string   Control socket path (default: CREST_SOCKET)
//	-timeout duration  Per-call timeout (default 5s)
//
// Examples:
//
//	# One-shot query
//	crest-ctl resources/list-views
//
//	# One-shot call with arguments
//	crest-ctl resources/focus-view '{"id": 7}'
//
//	# Interactive shell
//	crest-ctl
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/crest-wm/crest-go/pkg/transport"
	"github.com/crest-wm/crest-go/pkg/wire"
)

func main() {
	socket := flag.String("socket", "", "Control socket path (default: CREST_SOCKET)")
	timeout := flag.Duration("timeout", 5*time.Second, "Per-call timeout")
	flag.Parse()

	client := transport.NewClient(transport.ClientConfig{SocketPath: *socket})
	conn, err := client.Connect(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if flag.NArg() > 0 {
		os.Exit(runOneShot(conn, *timeout, flag.Args()))
	}

	shell, err := newShell(conn, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start shell: %v\n", err)
		os.Exit(1)
	}
	shell.Run()
}

func runOneShot(conn *transport.ClientConn, timeout time.Duration, args []string) int {
	method := args[0]
	data := wire.Object{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid JSON data: %v\n", err)
			return 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := conn.CallRaw(ctx, method, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Call failed: %v\n", err)
		return 1
	}

	printJSON(os.Stdout, resp)
	if obj, ok := resp.(map[string]any); ok && wire.IsError(obj) {
		return 1
	}
	return 0
}

func printJSON(w *os.File, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render response: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}
