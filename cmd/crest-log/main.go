// Command crest-log is a tool for viewing and analyzing Crest protocol
// log files.
//
// Log files are created by crest-sim with the -protocol-log flag. They
// are streams of CBOR-encoded events, one per protocol frame, message
// or state change.
//
// Usage:
//
//	crest-log <command> [flags] <file.clog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON lines
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	crest-log view session.clog
//
//	# View only wire-layer events for one connection
//	crest-log view -layer wire -conn-id abc12345 session.clog
//
//	# View only view-mapped events
//	crest-log view -event view-mapped session.clog
//
//	# Export to JSONL
//	crest-log export session.clog > session.jsonl
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/crest-wm/crest-go/pkg/log"
)

const usage = `crest-log - Crest protocol log analyzer

Usage:
  crest-log <command> [flags] <file.clog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON lines
  stats    Show statistics about the log file

Use "crest-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on a flag set and
// returns a builder that assembles the log.Filter after parsing.
func filterFlags(fs *flag.FlagSet) func() (log.Filter, error) {
	layer := fs.String("layer", "", "Filter by layer (transport, wire, service)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, state, error)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	method := fs.String("method", "", "Filter by method name")
	event := fs.String("event", "", "Filter by pushed event name")

	return func() (log.Filter, error) {
		filter := log.Filter{
			ConnectionID: *connID,
			Method:       *method,
			EventName:    *event,
		}
		switch *layer {
		case "":
		case "transport":
			l := log.LayerTransport
			filter.Layer = &l
		case "wire":
			l := log.LayerWire
			filter.Layer = &l
		case "service":
			l := log.LayerService
			filter.Layer = &l
		default:
			return filter, fmt.Errorf("unknown layer %q", *layer)
		}
		switch *direction {
		case "":
		case "in":
			d := log.DirectionIn
			filter.Direction = &d
		case "out":
			d := log.DirectionOut
			filter.Direction = &d
		default:
			return filter, fmt.Errorf("unknown direction %q", *direction)
		}
		switch *category {
		case "":
		case "message":
			c := log.CategoryMessage
			filter.Category = &c
		case "state":
			c := log.CategoryState
			filter.Category = &c
		case "error":
			c := log.CategoryError
			filter.Category = &c
		default:
			return filter, fmt.Errorf("unknown category %q", *category)
		}
		return filter, nil
	}
}

func openReader(fs *flag.FlagSet, build func() (log.Filter, error)) *log.Reader {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	filter, err := build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	reader, err := log.NewFilteredReader(fs.Arg(0), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return reader
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	build := filterFlags(fs)
	fs.Parse(args)

	reader := openReader(fs, build)
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(formatEvent(event))
	}
}

// formatEvent renders one event as a single line.
func formatEvent(e log.Event) string {
	conn := e.ConnectionID
	if len(conn) > 8 {
		conn = conn[:8]
	}
	line := fmt.Sprintf("%s %-3s %-9s %-7s [%s]",
		e.Timestamp.Format("15:04:05.000"),
		e.Direction, e.Layer, e.Category, conn)

	switch {
	case e.Frame != nil:
		line += fmt.Sprintf(" frame %d bytes", e.Frame.Size)
		if e.Frame.Truncated {
			line += " (truncated)"
		}
	case e.Message != nil:
		m := e.Message
		switch m.Type {
		case log.MessageTypeRequest:
			line += fmt.Sprintf(" request %s", m.Method)
		case log.MessageTypeResponse:
			line += fmt.Sprintf(" response %s", m.Method)
			if m.ErrorKind != "" {
				line += fmt.Sprintf(" error=%s", m.ErrorKind)
			}
			if m.ProcessingTime != nil {
				line += fmt.Sprintf(" (%s)", m.ProcessingTime)
			}
		case log.MessageTypeEvent:
			line += fmt.Sprintf(" event %s", m.EventName)
		}
	case e.StateChange != nil:
		sc := e.StateChange
		if sc.OldState != "" {
			line += fmt.Sprintf(" %s %s -> %s", sc.Entity, sc.OldState, sc.NewState)
		} else {
			line += fmt.Sprintf(" %s %s", sc.Entity, sc.NewState)
		}
	case e.Error != nil:
		line += fmt.Sprintf(" error: %s", e.Error.Message)
		if e.Error.Context != "" {
			line += fmt.Sprintf(" (%s)", e.Error.Context)
		}
	}
	return line
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	build := filterFlags(fs)
	fs.Parse(args)

	reader := openReader(fs, build)
	defer reader.Close()

	enc := json.NewEncoder(os.Stdout)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := enc.Encode(exportRecord(event)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// exportRecord flattens an event for JSONL output.
func exportRecord(e log.Event) map[string]any {
	rec := map[string]any{
		"timestamp": e.Timestamp,
		"conn_id":   e.ConnectionID,
		"direction": e.Direction.String(),
		"layer":     e.Layer.String(),
		"category":  e.Category.String(),
	}
	if e.Frame != nil {
		rec["frame_size"] = e.Frame.Size
	}
	if e.Message != nil {
		rec["message_type"] = e.Message.Type.String()
		if e.Message.Method != "" {
			rec["method"] = e.Message.Method
		}
		if e.Message.EventName != "" {
			rec["event"] = e.Message.EventName
		}
		if e.Message.ErrorKind != "" {
			rec["error_kind"] = e.Message.ErrorKind
		}
		if e.Message.Payload != nil {
			rec["payload"] = e.Message.Payload
		}
	}
	if e.StateChange != nil {
		rec["entity"] = e.StateChange.Entity.String()
		rec["new_state"] = e.StateChange.NewState
	}
	if e.Error != nil {
		rec["error"] = e.Error.Message
	}
	return rec
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	build := filterFlags(fs)
	fs.Parse(args)

	reader := openReader(fs, build)
	defer reader.Close()

	total := 0
	byLayer := map[string]int{}
	byMethod := map[string]int{}
	byEvent := map[string]int{}
	conns := map[string]struct{}{}
	errors := 0

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		total++
		byLayer[event.Layer.String()]++
		if event.ConnectionID != "" {
			conns[event.ConnectionID] = struct{}{}
		}
		if event.Category == log.CategoryError {
			errors++
		}
		if m := event.Message; m != nil {
			if m.Type == log.MessageTypeRequest {
				byMethod[m.Method]++
			}
			if m.Type == log.MessageTypeEvent {
				byEvent[m.EventName]++
			}
		}
	}

	fmt.Printf("Events:      %d\n", total)
	fmt.Printf("Connections: %d\n", len(conns))
	fmt.Printf("Errors:      %d\n", errors)
	printCounts("By layer", byLayer)
	printCounts("Requests by method", byMethod)
	printCounts("Pushed events by name", byEvent)
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-32s %d\n", k, counts[k])
	}
}
